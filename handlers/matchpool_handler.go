package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
	"github.com/bilwininc-ship-it/aianaliz/middleware"
	"github.com/bilwininc-ship-it/aianaliz/services"
)

type MatchPoolHandler struct {
	matchPoolService *services.MatchPoolService
}

func NewMatchPoolHandler(matchPoolService *services.MatchPoolService) *MatchPoolHandler {
	return &MatchPoolHandler{
		matchPoolService: matchPoolService,
	}
}

// RefreshPool is the manual refresh trigger. It is unauthenticated; the
// rate limiter in front of it is the only throttle.
func (h *MatchPoolHandler) RefreshPool(w http.ResponseWriter, r *http.Request) {
	// Two provider calls plus the pool rewrite; this one is slow.
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	log.Println("Manual match pool refresh triggered")

	summary, err := h.matchPoolService.RefreshPool(ctx)
	if err != nil {
		log.Printf("Match pool refresh failed: %v", err)
		middleware.RecordPoolRefresh("failure")
		respondWithJSON(w, apperror.HTTPStatus(apperror.KindOf(err)), map[string]interface{}{
			"success": false,
			"error":   apperror.MessageOf(err),
		})
		return
	}

	middleware.RecordPoolRefresh("success")
	middleware.SetPoolFixtureCount(summary.TotalMatches)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "Match pool güncellendi",
		"totalMatches": summary.TotalMatches,
		"leagues":      summary.Leagues,
		"timestamp":    summary.Timestamp,
	})
}

// PoolStatus serves the metadata written by the last refresh.
func (h *MatchPoolHandler) PoolStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	meta, err := h.matchPoolService.PoolStatus(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, meta)
}
