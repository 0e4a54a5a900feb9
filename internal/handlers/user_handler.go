package handlers

import (
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/config"
	"github.com/Dias221467/food-expiry-tracker/internal/services"
	jwtutil "github.com/Dias221467/food-expiry-tracker/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

type registerRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		log.WithError(err).Warn("Invalid registration request")
		respondServiceError(w, err, "Invalid request payload")
		return
	}

	createdUser, err := h.Service.RegisterUser(r.Context(), services.Registration{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to register user")
		return
	}

	token, err := jwtutil.GenerateToken(createdUser.ID.Hex(), createdUser.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"token": token, "user": createdUser})
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials loginRequest
	if err := decodeAndValidate(r, &credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		respondServiceError(w, err, "Invalid request payload")
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		respondServiceError(w, err, "Failed to authenticate")
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	respondJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

// MeHandler returns the logged-in user's profile.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
