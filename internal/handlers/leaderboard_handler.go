package handlers

import (
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
)

type LeaderboardHandler struct {
	Service *services.LeaderboardService
}

func NewLeaderboardHandler(service *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{Service: service}
}

// GET /api/leaderboard?type=points|itemsSaved|streak|co2&limit=N
func (h *LeaderboardHandler) TopHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultLeaderboardLimit)
	if err != nil {
		respondServiceError(w, err, "Invalid limit")
		return
	}
	kind := r.URL.Query().Get("type")
	entries, err := h.Service.Top(r.Context(), kind, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch leaderboard")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"type": kind, "leaderboard": entries})
}

// GET /api/leaderboard/community-stats
func (h *LeaderboardHandler) CommunityStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Community(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to fetch community stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GET /api/leaderboard/user-rank?type=
func (h *LeaderboardHandler) UserRankHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rank, err := h.Service.Rank(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		respondServiceError(w, err, "Failed to fetch user rank")
		return
	}
	respondJSON(w, http.StatusOK, rank)
}
