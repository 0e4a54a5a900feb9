package expiry

import (
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
)

// ExpiringSoonDays is the largest days-until-expiry still reported as expiring soon.
const ExpiringSoonDays = 3

// StatusFor maps a days-until-expiry value to a non-terminal status.
func StatusFor(days int) models.ItemStatus {
	switch {
	case days < 0:
		return models.StatusExpired
	case days <= ExpiringSoonDays:
		return models.StatusExpiringSoon
	default:
		return models.StatusFresh
	}
}

// DeriveStatus returns the status an item should have at now. Consumed is returned unchanged.
func DeriveStatus(current models.ItemStatus, expiryDate, now time.Time) models.ItemStatus {
	if current == models.StatusConsumed {
		return models.StatusConsumed
	}
	return StatusFor(DaysUntil(expiryDate, now))
}

// Refresh recomputes the derived fields of item in place and reports whether Status changed.
// Callers persist the new status themselves.
func Refresh(item *models.Item, now time.Time) bool {
	item.DaysUntilExpiry = DaysUntil(item.ExpiryDate, now)
	next := DeriveStatus(item.Status, item.ExpiryDate, now)
	changed := next != item.Status
	item.Status = next
	return changed
}

// RefreshAll applies Refresh to every item of a slice.
func RefreshAll(items []models.Item, now time.Time) {
	for i := range items {
		Refresh(&items[i], now)
	}
}
