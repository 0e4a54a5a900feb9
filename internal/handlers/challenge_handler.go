package handlers

import (
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
)

type ChallengeHandler struct {
	Service *services.ChallengeService
}

func NewChallengeHandler(service *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{Service: service}
}

// GET /api/challenges
func (h *ChallengeHandler) ListChallengesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	challenges, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Error fetching challenges")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}

// GET /api/challenges/active
func (h *ChallengeHandler) ActiveChallengesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	challenges, err := h.Service.Active(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Error fetching active challenges")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}
