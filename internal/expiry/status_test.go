package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		days int
		want models.ItemStatus
	}{
		{-30, models.StatusExpired},
		{-1, models.StatusExpired},
		{0, models.StatusExpiringSoon},
		{1, models.StatusExpiringSoon},
		{3, models.StatusExpiringSoon},
		{4, models.StatusFresh},
		{365, models.StatusFresh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.days), "days=%d", tt.days)
	}
}

func TestDeriveStatus_ConsumedIsTerminal(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	for _, offset := range []int{-100, -1, 0, 2, 10} {
		got := DeriveStatus(models.StatusConsumed, now.AddDate(0, 0, offset), now)
		assert.Equal(t, models.StatusConsumed, got, "offset=%d", offset)
	}
}

func TestDeriveStatus_IgnoresStaleStoredStatus(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	assert.Equal(t, models.StatusExpired, DeriveStatus(models.StatusFresh, yesterday, now))
	assert.Equal(t, models.StatusFresh, DeriveStatus(models.StatusExpired, now.AddDate(0, 0, 10), now))
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	for _, offset := range []int{-3, 0, 3, 4} {
		exp := now.AddDate(0, 0, offset)
		first := DeriveStatus(models.StatusFresh, exp, now)
		second := DeriveStatus(first, exp, now)
		assert.Equal(t, first, second, "offset=%d", offset)
	}
}

func TestRefresh(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	item := &models.Item{Status: models.StatusFresh, ExpiryDate: now.AddDate(0, 0, 2)}
	assert.True(t, Refresh(item, now))
	assert.Equal(t, models.StatusExpiringSoon, item.Status)
	assert.Equal(t, 2, item.DaysUntilExpiry)
	assert.False(t, Refresh(item, now))

	consumed := &models.Item{Status: models.StatusConsumed, ExpiryDate: now.AddDate(0, 0, -4)}
	assert.False(t, Refresh(consumed, now))
	assert.Equal(t, models.StatusConsumed, consumed.Status)
	assert.Equal(t, -4, consumed.DaysUntilExpiry)
}
