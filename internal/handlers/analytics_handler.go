package handlers

import (
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

// GET /api/analytics/overview
func (h *AnalyticsHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	overview, err := h.Service.Overview(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to build analytics")
		return
	}
	respondJSON(w, http.StatusOK, overview)
}
