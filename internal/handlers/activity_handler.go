package handlers

import (
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /api/activity?limit=N
func (h *ActivityHandler) RecentActivityHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondServiceError(w, err, "Invalid limit")
		return
	}
	activities, err := h.Service.GetRecentActivities(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch activity")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}
