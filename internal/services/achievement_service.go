package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/gamification"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnlockedAchievement pairs a catalog entry with its unlock record.
type UnlockedAchievement struct {
	gamification.Definition
	UnlockedAt time.Time `json:"unlockedAt"`
}

type CheckResult struct {
	NewlyUnlocked []UnlockedAchievement `json:"newlyUnlocked"`
	Total         int                   `json:"total"`
}

// AchievementView is a catalog entry annotated for one user.
type AchievementView struct {
	gamification.Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type AchievementStats struct {
	Unlocked    int     `json:"unlocked"`
	Total       int     `json:"total"`
	Progress    float64 `json:"progress"`
	TotalPoints int     `json:"totalPoints"`
}

type AchievementService struct {
	achievements AchievementStore
	users        UserStore
	items        ItemStore
	activity     *ActivityService
	catalog      gamification.Catalog
	now          func() time.Time
}

func NewAchievementService(achievements AchievementStore, users UserStore, items ItemStore, activity *ActivityService, catalog gamification.Catalog) *AchievementService {
	return &AchievementService{
		achievements: achievements,
		users:        users,
		items:        items,
		activity:     activity,
		catalog:      catalog,
		now:          time.Now,
	}
}

// SetClock replaces the service clock. Day boundaries follow the clock's location.
func (s *AchievementService) SetClock(now func() time.Time) {
	s.now = now
}

// Check evaluates every not yet unlocked achievement for userID, records new unlocks and
// credits their points. An unlock lost to a concurrent check awards nothing.
func (s *AchievementService) Check(ctx context.Context, userID primitive.ObjectID) (*CheckResult, error) {
	now := s.now()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	existing, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	expiry.RefreshAll(items, now)
	qualified := gamification.Evaluate(s.catalog, gamification.Snapshot{
		Stats: user.Stats,
		Items: items,
		Now:   now,
	}, existing)

	result := &CheckResult{NewlyUnlocked: []UnlockedAchievement{}}
	awarded := 0
	for _, def := range qualified {
		a := &models.Achievement{
			UserID:     userID,
			Type:       def.Type,
			UnlockedAt: now,
			Points:     def.Points,
		}
		if err := s.achievements.Create(ctx, a); err != nil {
			if errors.Is(err, errs.ErrAlreadyExists) {
				continue
			}
			return nil, fmt.Errorf("failed to record achievement %s: %w", def.Type, err)
		}
		awarded += def.Points
		result.NewlyUnlocked = append(result.NewlyUnlocked, UnlockedAchievement{Definition: def, UnlockedAt: now})

		if s.activity != nil {
			_ = s.activity.LogActivity(ctx, userID, models.ActivityAchievementUnlocked, a.ID,
				fmt.Sprintf("Unlocked %s %s", def.Icon, def.Name))
		}
	}

	if awarded > 0 {
		if _, err := applyStats(ctx, s.users, userID, models.StatsDelta{Points: awarded}); err != nil {
			return nil, fmt.Errorf("failed to credit achievement points: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"userID":   userID.Hex(),
			"unlocked": len(result.NewlyUnlocked),
			"points":   awarded,
		}).Info("Achievements unlocked")
	}

	result.Total = len(existing) + len(result.NewlyUnlocked)
	return result, nil
}

// applyStats stores delta and raises the level to match the resulting points.
func applyStats(ctx context.Context, users UserStore, userID primitive.ObjectID, delta models.StatsDelta) (models.Stats, error) {
	stats, err := users.ApplyStats(ctx, userID, delta)
	if err != nil {
		return models.Stats{}, err
	}
	if level := gamification.LevelFor(stats.Points); level > stats.Level {
		if err := users.SetLevel(ctx, userID, level); err != nil {
			return models.Stats{}, err
		}
		stats.Level = level
	}
	return stats, nil
}

// List returns the whole catalog with the user's unlock state.
func (s *AchievementService) List(ctx context.Context, userID primitive.ObjectID) ([]AchievementView, error) {
	existing, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	unlocked := make(map[models.AchievementType]time.Time, len(existing))
	for _, a := range existing {
		unlocked[a.Type] = a.UnlockedAt
	}

	views := make([]AchievementView, 0, len(s.catalog))
	for _, def := range s.catalog {
		v := AchievementView{Definition: def}
		if at, ok := unlocked[def.Type]; ok {
			v.Unlocked = true
			v.UnlockedAt = &at
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *AchievementService) Stats(ctx context.Context, userID primitive.ObjectID) (*AchievementStats, error) {
	existing, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	st := &AchievementStats{Unlocked: len(existing), Total: len(s.catalog)}
	for _, a := range existing {
		st.TotalPoints += a.Points
	}
	if st.Total > 0 {
		st.Progress = math.Round(float64(st.Unlocked)/float64(st.Total)*1000) / 10
	}
	return st, nil
}
