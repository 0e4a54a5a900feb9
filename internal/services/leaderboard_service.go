package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/gamification"
	"github.com/Dias221467/food-expiry-tracker/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
)

type LeaderboardEntry struct {
	Rank          int                `json:"rank"`
	UserID        primitive.ObjectID `json:"userId"`
	Name          string             `json:"name"`
	Points        int                `json:"points"`
	Level         int                `json:"level"`
	ItemsSaved    int                `json:"itemsSaved"`
	CurrentStreak int                `json:"currentStreak"`
	CO2Saved      float64            `json:"co2Saved"`
}

type CommunityStats struct {
	TotalUsers         int64               `json:"totalUsers"`
	TotalItemsTracked  int64               `json:"totalItemsTracked"`
	TotalItemsSaved    int64               `json:"totalItemsSaved"`
	TotalItemsWasted   int64               `json:"totalItemsWasted"`
	TotalMoneySaved    float64             `json:"totalMoneySaved"`
	WasteReductionRate float64             `json:"wasteReductionRate"`
	Impact             gamification.Impact `json:"impact"`
}

type UserRank struct {
	Type       string  `json:"type"`
	Rank       int64   `json:"rank"`
	TotalUsers int64   `json:"totalUsers"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
}

type LeaderboardService struct {
	users UserStore
	items ItemStore
}

func NewLeaderboardService(users UserStore, items ItemStore) *LeaderboardService {
	return &LeaderboardService{users: users, items: items}
}

func leaderboardField(kind string) (string, string, error) {
	if kind == "" {
		kind = "points"
	}
	field, ok := repository.LeaderboardField[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown leaderboard type %q", errs.ErrValidation, kind)
	}
	return kind, field, nil
}

// Top returns the leaderboard of the given type. limit is clamped to [1, 100], 0 means 50.
func (s *LeaderboardService) Top(ctx context.Context, kind string, limit int) ([]LeaderboardEntry, error) {
	_, field, err := leaderboardField(kind)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		limit = MaxLeaderboardLimit
	}

	users, err := s.users.TopUsers(ctx, field, int64(limit))
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			UserID:        u.ID,
			Name:          u.Name,
			Points:        u.Stats.Points,
			Level:         gamification.LevelFor(u.Stats.Points),
			ItemsSaved:    u.Stats.ItemsSaved,
			CurrentStreak: u.Stats.CurrentStreak,
			CO2Saved:      gamification.CO2Saved(u.Stats.ItemsSaved),
		})
	}
	return entries, nil
}

func (s *LeaderboardService) Community(ctx context.Context) (*CommunityStats, error) {
	totals, err := s.users.CommunityTotals(ctx)
	if err != nil {
		return nil, err
	}
	tracked, err := s.items.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	return &CommunityStats{
		TotalUsers:         totals.Users,
		TotalItemsTracked:  tracked,
		TotalItemsSaved:    totals.ItemsSaved,
		TotalItemsWasted:   totals.ItemsWasted,
		TotalMoneySaved:    totals.MoneySaved,
		WasteReductionRate: gamification.WasteReductionRate(int(totals.ItemsSaved), int(totals.ItemsWasted)),
		Impact:             gamification.ImpactOf(int(totals.ItemsSaved)),
	}, nil
}

// Rank places userID on the leaderboard of the given type. Ties share the better rank.
func (s *LeaderboardService) Rank(ctx context.Context, userID primitive.ObjectID, kind string) (*UserRank, error) {
	kind, field, err := leaderboardField(kind)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var value float64
	switch kind {
	case "itemsSaved", "co2":
		value = float64(user.Stats.ItemsSaved)
	case "streak":
		value = float64(user.Stats.CurrentStreak)
	default:
		value = float64(user.Stats.Points)
	}

	above, err := s.users.CountAbove(ctx, field, value)
	if err != nil {
		return nil, err
	}
	totals, err := s.users.CommunityTotals(ctx)
	if err != nil {
		return nil, err
	}

	r := &UserRank{Type: kind, Rank: above + 1, TotalUsers: totals.Users, Value: value}
	if kind == "co2" {
		r.Value = gamification.CO2Saved(user.Stats.ItemsSaved)
	}
	if totals.Users > 0 {
		r.Percentile = float64(int64(1000)*(totals.Users-above)/totals.Users) / 10
	}
	return r, nil
}
