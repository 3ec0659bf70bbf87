package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/ledger"
	"github.com/bilwininc-ship-it/aianaliz/middleware"
	"github.com/bilwininc-ship-it/aianaliz/services"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// VerifyAndAddCredits validates a Google Play one-time purchase and
// credits the caller's account.
func (h *PurchaseHandler) VerifyAndAddCredits(w http.ResponseWriter, r *http.Request) {
	// The flow makes one outbound Play API call; give it room.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Kullanıcı girişi doğrulanamadı. Lütfen tekrar giriş yapın.")
		return
	}

	var req ledger.VerifyPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.purchaseService.VerifyAndAddCredits(ctx, userID, &req)
	if err != nil {
		middleware.RecordPurchaseResult("credits", string(apperror.KindOf(err)))
		respondWithAppError(w, err)
		return
	}

	middleware.RecordPurchaseResult("credits", "success")
	respondWithJSON(w, http.StatusOK, ledger.CreditResponse{
		Success:      true,
		CreditsAdded: result.CreditsAdded,
		NewBalance:   result.NewBalance,
		Message:      fmt.Sprintf("%d kredi hesabınıza eklendi", result.CreditsAdded),
	})
}

// VerifyAndSetPremium validates a Google Play subscription and activates
// premium on the caller's account.
func (h *PurchaseHandler) VerifyAndSetPremium(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Kullanıcı girişi doğrulanamadı. Lütfen tekrar giriş yapın.")
		return
	}

	var req ledger.VerifyPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.purchaseService.VerifyAndSetPremium(ctx, userID, &req)
	if err != nil {
		middleware.RecordPurchaseResult("premium", string(apperror.KindOf(err)))
		respondWithAppError(w, err)
		return
	}

	middleware.RecordPurchaseResult("premium", "success")
	respondWithJSON(w, http.StatusOK, ledger.PremiumResponse{
		Success:     true,
		PremiumDays: result.PremiumDays,
		ExpiresAt:   result.ExpiresAt,
		Message:     fmt.Sprintf("%d günlük premium üyelik aktif edildi", result.PremiumDays),
	})
}
