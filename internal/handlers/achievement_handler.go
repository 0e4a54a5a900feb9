package handlers

import (
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
)

type AchievementHandler struct {
	Service *services.AchievementService
}

func NewAchievementHandler(service *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{Service: service}
}

// GET /api/achievements
func (h *AchievementHandler) ListAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	views, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch achievements")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"achievements": views})
}

// POST /api/achievements/check
func (h *AchievementHandler) CheckAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Check(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to check achievements")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /api/achievements/stats
func (h *AchievementHandler) AchievementStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.Stats(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch achievement stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
