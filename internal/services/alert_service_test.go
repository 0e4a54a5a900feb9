package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notifiableUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: "Asel", Email: "asel@example.com", Preferences: models.DefaultPreferences()}
}

func newTestAlertService(items *fakeItems, users *fakeUsers, alerts *fakeAlerts) *AlertService {
	s := NewAlertService(items, users, alerts, 2)
	s.now = fixedNow
	return s
}

func TestGenerateAlerts_ExpiringInThreeDays(t *testing.T) {
	user := notifiableUser()
	users := newFakeUsers(user)
	item := &models.Item{UserID: user.ID, Name: "X", ExpiryDate: daysFromNow(3), Status: models.StatusFresh}
	items := newFakeItems(item)
	alerts := newFakeAlerts()

	summary, err := newTestAlertService(items, users, alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	created := alerts.all()
	require.Len(t, created, 1)
	a := created[0]
	assert.Equal(t, models.AlertExpiringSoon, a.Type)
	assert.Equal(t, models.PriorityMedium, a.Priority)
	assert.Equal(t, "X expires in 3 days", a.Message)
	assert.Equal(t, 3, a.DaysUntilExpiry)
	assert.Equal(t, item.ID, a.ItemID)
	assert.False(t, a.Sent)

	assert.Equal(t, ScanSummary{Users: 1, Items: 1, StatusUpdates: 1, AlertsCreated: 1}, summary)
	assert.Equal(t, models.StatusExpiringSoon, items.get(item.ID).Status)
}

func TestGenerateAlerts_EmptyReminderDaysMeansNoAlerts(t *testing.T) {
	user := notifiableUser()
	user.Preferences.ReminderDays = []int{}
	item := &models.Item{UserID: user.ID, Name: "Milk", ExpiryDate: daysFromNow(3), Status: models.StatusFresh}
	items := newFakeItems(item)
	alerts := newFakeAlerts()

	summary, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Empty(t, alerts.all())
	assert.Equal(t, 0, summary.AlertsCreated)
}

func TestGenerateAlerts_ExpiredWithoutMatchingThreshold(t *testing.T) {
	user := notifiableUser()
	item := &models.Item{UserID: user.ID, Name: "Yogurt", ExpiryDate: daysFromNow(-1), Status: models.StatusExpiringSoon}
	items := newFakeItems(item)
	alerts := newFakeAlerts()

	summary, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Empty(t, alerts.all())
	assert.Equal(t, 0, summary.AlertsCreated)
	assert.Equal(t, models.StatusExpired, items.get(item.ID).Status, "status is persisted even without an alert")
}

func TestGenerateAlerts_OnlyExactThresholds(t *testing.T) {
	user := notifiableUser()
	items := newFakeItems(
		&models.Item{UserID: user.ID, Name: "a", ExpiryDate: daysFromNow(7)},
		&models.Item{UserID: user.ID, Name: "b", ExpiryDate: daysFromNow(6)},
		&models.Item{UserID: user.ID, Name: "c", ExpiryDate: daysFromNow(2)},
		&models.Item{UserID: user.ID, Name: "d", ExpiryDate: daysFromNow(1)},
		&models.Item{UserID: user.ID, Name: "e", ExpiryDate: daysFromNow(0)},
		&models.Item{UserID: user.ID, Name: "f", ExpiryDate: daysFromNow(1), Status: models.StatusConsumed},
	)
	alerts := newFakeAlerts()

	summary, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	messages := map[string]models.AlertPriority{}
	for _, a := range alerts.all() {
		messages[a.Message] = a.Priority
	}
	assert.Equal(t, map[string]models.AlertPriority{
		"a expires in 7 days": models.PriorityLow,
		"d expires tomorrow":  models.PriorityHigh,
	}, messages)
	assert.Equal(t, 5, summary.Items)
}

func TestGenerateAlerts_SecondRunSameDayCreatesNothing(t *testing.T) {
	user := notifiableUser()
	items := newFakeItems(&models.Item{UserID: user.ID, Name: "Milk", ExpiryDate: daysFromNow(1)})
	alerts := newFakeAlerts()
	svc := newTestAlertService(items, newFakeUsers(user), alerts)

	_, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)
	second, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Len(t, alerts.all(), 1)
	assert.Equal(t, 0, second.AlertsCreated)
	assert.Equal(t, 0, second.Failures)
}

func TestGenerateAlerts_LostInsertRaceIsNotAFailure(t *testing.T) {
	user := notifiableUser()
	item := &models.Item{UserID: user.ID, Name: "Milk", ExpiryDate: daysFromNow(3)}
	items := newFakeItems(item)
	existing := NewAlert(user.ID, item, 3, testNow)
	alerts := newFakeAlerts(&existing)
	alerts.skipExists = true

	summary, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Len(t, alerts.all(), 1)
	assert.Equal(t, 0, summary.AlertsCreated)
	assert.Equal(t, 0, summary.Failures)
}

func TestGenerateAlerts_UserFailureIsIsolated(t *testing.T) {
	broken, healthy := notifiableUser(), notifiableUser()
	users := newFakeUsers(broken, healthy)
	items := newFakeItems(
		&models.Item{UserID: broken.ID, Name: "a", ExpiryDate: daysFromNow(3)},
		&models.Item{UserID: healthy.ID, Name: "b", ExpiryDate: daysFromNow(3)},
	)
	items.listErr[broken.ID] = errors.New("connection reset")
	alerts := newFakeAlerts()

	summary, err := newTestAlertService(items, users, alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	require.Len(t, alerts.all(), 1)
	assert.Equal(t, healthy.ID, alerts.all()[0].UserID)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, 2, summary.Users)
}

func TestGenerateAlerts_ItemFailureIsIsolated(t *testing.T) {
	user := notifiableUser()
	items := newFakeItems(
		&models.Item{UserID: user.ID, Name: "a", ExpiryDate: daysFromNow(3), Status: models.StatusExpiringSoon},
		&models.Item{UserID: user.ID, Name: "b", ExpiryDate: daysFromNow(7), Status: models.StatusFresh},
	)
	alerts := newFakeAlerts()
	alerts.existsErr = errors.New("timeout")

	summary, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failures)
	assert.Equal(t, 2, summary.Items)
}

func TestGenerateAlerts_SkipsDisabledUsers(t *testing.T) {
	user := notifiableUser()
	user.Preferences.NotificationsEnabled = false
	items := newFakeItems(&models.Item{UserID: user.ID, Name: "a", ExpiryDate: daysFromNow(3)})
	alerts := newFakeAlerts()

	summary, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Empty(t, alerts.all())
	assert.Equal(t, 0, summary.Users)
}

func TestGenerateAlerts_CustomThresholds(t *testing.T) {
	user := notifiableUser()
	user.Preferences.ReminderDays = []int{5, 0}
	items := newFakeItems(
		&models.Item{UserID: user.ID, Name: "Bread", ExpiryDate: daysFromNow(0)},
		&models.Item{UserID: user.ID, Name: "Cheese", ExpiryDate: daysFromNow(3)},
	)
	alerts := newFakeAlerts()

	_, err := newTestAlertService(items, newFakeUsers(user), alerts).GenerateAlerts(context.Background())
	require.NoError(t, err)

	created := alerts.all()
	require.Len(t, created, 1)
	assert.Equal(t, "Bread expires today!", created[0].Message)
	assert.Equal(t, models.AlertExpired, created[0].Type)
	assert.Equal(t, models.PriorityHigh, created[0].Priority)
}

func TestGenerateAlerts_PublishesCreatedAlerts(t *testing.T) {
	user := notifiableUser()
	items := newFakeItems(&models.Item{UserID: user.ID, Name: "Milk", ExpiryDate: daysFromNow(1)})
	pub := &capturePublisher{}
	svc := newTestAlertService(items, newFakeUsers(user), newFakeAlerts())
	svc.SetPublisher(pub)

	_, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)

	require.Len(t, pub.alerts, 1)
	assert.Equal(t, "Milk expires tomorrow", pub.alerts[0].Message)
}

func TestGenerateAlerts_ListUsersFails(t *testing.T) {
	users := newFakeUsers()
	users.listErr = errors.New("down")

	_, err := newTestAlertService(newFakeItems(), users, newFakeAlerts()).GenerateAlerts(context.Background())
	assert.Error(t, err)
}

func TestAlertRules(t *testing.T) {
	tests := []struct {
		days     int
		typ      models.AlertType
		priority models.AlertPriority
		message  string
	}{
		{-2, models.AlertExpired, models.PriorityHigh, "Milk expired 2 day(s) ago"},
		{0, models.AlertExpired, models.PriorityHigh, "Milk expires today!"},
		{1, models.AlertExpiringSoon, models.PriorityHigh, "Milk expires tomorrow"},
		{2, models.AlertExpiringSoon, models.PriorityMedium, "Milk expires in 2 days"},
		{3, models.AlertExpiringSoon, models.PriorityMedium, "Milk expires in 3 days"},
		{7, models.AlertExpiringSoon, models.PriorityLow, "Milk expires in 7 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.typ, AlertTypeFor(tt.days), "type for %d", tt.days)
		assert.Equal(t, tt.priority, PriorityFor(tt.days), "priority for %d", tt.days)
		assert.Equal(t, tt.message, AlertMessage("Milk", tt.days))
	}
}

func TestGenerateAlerts_FollowsClockTimeZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	user := notifiableUser()
	// Stored as IST midnight, which is still 17 October in UTC.
	item := &models.Item{UserID: user.ID, Name: "Paneer", ExpiryDate: time.Date(2026, 10, 18, 0, 0, 0, 0, ist)}
	alerts := newFakeAlerts()
	svc := newTestAlertService(newFakeItems(item), newFakeUsers(user), alerts)
	svc.SetClock(func() time.Time { return testNow.In(ist) })

	_, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)

	created := alerts.all()
	require.Len(t, created, 1)
	assert.Equal(t, 3, created[0].DaysUntilExpiry)
	assert.Equal(t, "Paneer expires in 3 days", created[0].Message)
}
