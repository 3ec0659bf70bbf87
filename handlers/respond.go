package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps a typed service error to its HTTP status.
func respondWithAppError(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	respondWithError(w, apperror.HTTPStatus(kind), apperror.MessageOf(err))
}
