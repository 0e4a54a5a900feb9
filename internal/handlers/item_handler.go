package handlers

import (
	"net/http"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/Dias221467/food-expiry-tracker/internal/services"
	log "github.com/sirupsen/logrus"
)

// ItemHandler serves the inventory endpoints.
type ItemHandler struct {
	Service  *services.ItemService
	Location *time.Location
}

func NewItemHandler(service *services.ItemService, loc *time.Location) *ItemHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ItemHandler{Service: service, Location: loc}
}

type createItemRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Category       string   `json:"category" validate:"omitempty,max=50"`
	Quantity       *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit           string   `json:"unit"`
	ExpiryDate     string   `json:"expiryDate" validate:"required"`
	PurchaseDate   string   `json:"purchaseDate"`
	EstimatedPrice *float64 `json:"estimatedPrice" validate:"omitempty,gte=0"`
	Notes          string   `json:"notes" validate:"max=500"`
	Barcode        string   `json:"barcode"`
}

type updateItemRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Category       *string  `json:"category"`
	Quantity       *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit           *string  `json:"unit"`
	ExpiryDate     *string  `json:"expiryDate"`
	EstimatedPrice *float64 `json:"estimatedPrice" validate:"omitempty,gte=0"`
	Notes          *string  `json:"notes" validate:"omitempty,max=500"`
}

// POST /api/items
func (h *ItemHandler) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req createItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err, "Invalid item")
		return
	}
	in := services.ItemInput{
		Name:           req.Name,
		Category:       req.Category,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		EstimatedPrice: req.EstimatedPrice,
		Notes:          req.Notes,
		Barcode:        req.Barcode,
	}
	expiresAt, err := parseDate(req.ExpiryDate, h.Location)
	if err != nil {
		respondServiceError(w, err, "Invalid item")
		return
	}
	in.ExpiryDate = expiresAt
	if req.PurchaseDate != "" {
		purchased, err := parseDate(req.PurchaseDate, h.Location)
		if err != nil {
			respondServiceError(w, err, "Invalid item")
			return
		}
		in.PurchaseDate = &purchased
	}

	item, err := h.Service.CreateItem(r.Context(), userID, in)
	if err != nil {
		respondServiceError(w, err, "Failed to create item")
		return
	}
	log.WithFields(log.Fields{"user_id": userID.Hex(), "item_id": item.ID.Hex()}).Info("Item created")
	respondJSON(w, http.StatusCreated, item)
}

// GET /api/items?status=&category=&sort=
func (h *ItemHandler) ListItemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	items, err := h.Service.ListItems(r.Context(), userID, services.ItemQuery{
		Status:   models.ItemStatus(q.Get("status")),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		respondServiceError(w, err, "Failed to fetch items")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// GET /api/items/expiring?days=N
func (h *ItemHandler) ExpiringItemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	days, err := queryInt(r, "days", services.DefaultExpiringWindowDays)
	if err != nil {
		respondServiceError(w, err, "Invalid days")
		return
	}
	items, err := h.Service.ExpiringItems(r.Context(), userID, days)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch expiring items")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// GET /api/items/stats
func (h *ItemHandler) ItemStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	counts, err := h.Service.Counts(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch item stats")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// GET /api/items/{id}
func (h *ItemHandler) GetItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "item")
	if !ok {
		return
	}
	item, err := h.Service.GetItem(r.Context(), userID, itemID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// PUT /api/items/{id}
func (h *ItemHandler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err, "Invalid item")
		return
	}
	upd := services.ItemUpdate{
		Name:           req.Name,
		Category:       req.Category,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		EstimatedPrice: req.EstimatedPrice,
		Notes:          req.Notes,
	}
	if req.ExpiryDate != nil {
		expiresAt, err := parseDate(*req.ExpiryDate, h.Location)
		if err != nil {
			respondServiceError(w, err, "Invalid item")
			return
		}
		upd.ExpiryDate = &expiresAt
	}

	item, err := h.Service.UpdateItem(r.Context(), userID, itemID, upd)
	if err != nil {
		respondServiceError(w, err, "Failed to update item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// PATCH /api/items/{id}/consume
func (h *ItemHandler) ConsumeItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "item")
	if !ok {
		return
	}
	result, err := h.Service.ConsumeItem(r.Context(), userID, itemID)
	if err != nil {
		respondServiceError(w, err, "Failed to consume item")
		return
	}
	log.WithFields(log.Fields{
		"user_id": userID.Hex(),
		"item_id": itemID.Hex(),
		"saved":   result.Outcome.Saved,
	}).Info("Item consumed")
	respondJSON(w, http.StatusOK, result)
}

// DELETE /api/items/{id}
func (h *ItemHandler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "item")
	if !ok {
		return
	}
	if err := h.Service.DeleteItem(r.Context(), userID, itemID); err != nil {
		respondServiceError(w, err, "Failed to delete item")
		return
	}
	respondMessage(w, http.StatusOK, "Item deleted")
}
