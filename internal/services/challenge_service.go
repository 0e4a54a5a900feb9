package services

import (
	"context"

	"github.com/Dias221467/food-expiry-tracker/internal/gamification"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChallengeService reports challenge progress derived from user stats.
type ChallengeService struct {
	users   UserStore
	catalog gamification.ChallengeCatalog
}

func NewChallengeService(users UserStore, catalog gamification.ChallengeCatalog) *ChallengeService {
	return &ChallengeService{users: users, catalog: catalog}
}

// List returns every challenge with the user's progress.
func (s *ChallengeService) List(ctx context.Context, userID primitive.ObjectID) ([]gamification.ChallengeProgress, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.catalog.Evaluate(user.Stats), nil
}

// Active returns the challenges the user has started but not completed.
func (s *ChallengeService) Active(ctx context.Context, userID primitive.ObjectID) ([]gamification.ChallengeProgress, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return gamification.Active(all), nil
}
