package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LastActiveUpdater is satisfied by *services.UserService.
type LastActiveUpdater interface {
	UpdateLastActive(ctx context.Context, id primitive.ObjectID) error
}

// UpdateLastActiveMiddleware stamps last_seen_at for authenticated requests. It must run
// after AuthMiddleware and never blocks the request on failure.
func UpdateLastActiveMiddleware(users LastActiveUpdater) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := GetUserFromContext(r.Context()); claims != nil {
				if userID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
					if err := users.UpdateLastActive(r.Context(), userID); err != nil {
						logrus.WithError(err).Debug("Failed to update last active")
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
