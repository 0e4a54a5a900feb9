package handlers

import (
	"context"
	"net/http"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
	"github.com/Dias221467/food-expiry-tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

type preferencesRequest struct {
	NotificationsEnabled  *bool   `json:"notificationsEnabled"`
	EmailNotifications    *bool   `json:"emailNotifications"`
	WhatsappNotifications *bool   `json:"whatsappNotifications"`
	ReminderDays          []int   `json:"reminderDays" validate:"omitempty,max=10,dive,gte=0,lte=30"`
	PhoneNumber           *string `json:"phoneNumber" validate:"omitempty,max=20"`
}

// GET /alerts?unread=true
func (h *NotificationHandler) GetUserAlertsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	unread := r.URL.Query().Get("unread") == "true"
	alerts, err := h.Service.GetUserAlerts(r.Context(), userID, unread)
	if err != nil {
		logger.Log.Errorf("Failed to fetch alerts: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to get alerts")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// PATCH /alerts/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	alertID, ok := pathID(w, r, "alert")
	if !ok {
		return
	}
	if err := h.Service.MarkAlertAsRead(r.Context(), userID, alertID); err != nil {
		respondServiceError(w, err, "Failed to mark as read")
		return
	}
	respondMessage(w, http.StatusOK, "Alert marked as read")
}

// DELETE /alerts/{id}
func (h *NotificationHandler) DeleteAlertHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	alertID, ok := pathID(w, r, "alert")
	if !ok {
		return
	}
	if err := h.Service.DeleteAlert(r.Context(), userID, alertID); err != nil {
		respondServiceError(w, err, "Failed to delete alert")
		return
	}
	respondMessage(w, http.StatusOK, "Alert deleted")
}

// GET /notifications/preferences
func (h *NotificationHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	prefs, err := h.Service.GetPreferences(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get preferences")
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// PUT /notifications/preferences. Omitted fields keep their current values.
func (h *NotificationHandler) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req preferencesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err, "Invalid preferences")
		return
	}

	current, err := h.Service.GetPreferences(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get preferences")
		return
	}
	next := *current
	if req.NotificationsEnabled != nil {
		next.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.EmailNotifications != nil {
		next.EmailNotifications = *req.EmailNotifications
	}
	if req.WhatsappNotifications != nil {
		next.WhatsappNotifications = *req.WhatsappNotifications
	}
	if req.ReminderDays != nil {
		next.ReminderDays = req.ReminderDays
	}
	if req.PhoneNumber != nil {
		next.PhoneNumber = *req.PhoneNumber
	}

	updated, err := h.Service.UpdatePreferences(r.Context(), userID, next)
	if err != nil {
		respondServiceError(w, err, "Failed to update preferences")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// POST /notifications/test/email
func (h *NotificationHandler) TestEmailHandler(w http.ResponseWriter, r *http.Request) {
	h.sendTest(w, r, h.Service.SendTestEmail)
}

// POST /notifications/test/whatsapp
func (h *NotificationHandler) TestWhatsAppHandler(w http.ResponseWriter, r *http.Request) {
	h.sendTest(w, r, h.Service.SendTestWhatsApp)
}

func (h *NotificationHandler) sendTest(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, userID primitive.ObjectID) (services.DeliveryOutcome, error)) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	outcome, err := send(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to send test notification")
		return
	}
	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, outcome)
}
