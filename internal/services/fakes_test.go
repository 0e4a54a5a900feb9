package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/Dias221467/food-expiry-tracker/internal/repository"
	"github.com/Dias221467/food-expiry-tracker/pkg/email"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 2026-10-15 08:00 UTC, the time the daily reminder job runs.
var testNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func daysFromNow(d int) time.Time { return testNow.AddDate(0, 0, d) }

func ptr[T any](v T) *T { return &v }

type fakeItems struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Item

	listErr       map[primitive.ObjectID]error
	statusErr     error
	consumeErr    error
	statusUpdates int
	reverts       int
}

var _ ItemStore = (*fakeItems)(nil)

func newFakeItems(items ...*models.Item) *fakeItems {
	f := &fakeItems{byID: map[primitive.ObjectID]*models.Item{}, listErr: map[primitive.ObjectID]error{}}
	for _, it := range items {
		if it.ID.IsZero() {
			it.ID = primitive.NewObjectID()
		}
		f.byID[it.ID] = it
	}
	return f
}

func (f *fakeItems) get(id primitive.ObjectID) *models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.byID[id]
	if !ok {
		return nil
	}
	c := *it
	return &c
}

func (f *fakeItems) Create(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = primitive.NewObjectID()
	c := *item
	f.byID[item.ID] = &c
	return nil
}

func (f *fakeItems) GetByIDForUser(_ context.Context, id, userID primitive.ObjectID) (*models.Item, error) {
	it := f.get(id)
	if it == nil || it.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return it, nil
}

func (f *fakeItems) GetByID(_ context.Context, id primitive.ObjectID) (*models.Item, error) {
	it := f.get(id)
	if it == nil {
		return nil, errs.ErrNotFound
	}
	return it, nil
}

func (f *fakeItems) filter(keep func(*models.Item) bool) []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Item{}
	for _, it := range f.byID {
		if keep(it) {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out
}

func (f *fakeItems) List(_ context.Context, q repository.ItemFilter) ([]models.Item, error) {
	return f.filter(func(it *models.Item) bool {
		return it.UserID == q.UserID && (q.Category == "" || it.Category == q.Category)
	}), nil
}

func (f *fakeItems) ListActiveByUser(_ context.Context, userID primitive.ObjectID) ([]models.Item, error) {
	f.mu.Lock()
	err := f.listErr[userID]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.filter(func(it *models.Item) bool {
		return it.UserID == userID && it.Status != models.StatusConsumed
	}), nil
}

func (f *fakeItems) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Item, error) {
	return f.filter(func(it *models.Item) bool { return it.UserID == userID }), nil
}

func (f *fakeItems) UpdateDetails(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[item.ID]
	if !ok || cur.IsConsumed() {
		return errs.ErrNotFound
	}
	c := *item
	f.byID[item.ID] = &c
	return nil
}

func (f *fakeItems) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.ItemStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	if it, ok := f.byID[id]; ok && !it.IsConsumed() {
		it.Status = status
		f.statusUpdates++
	}
	return nil
}

func (f *fakeItems) MarkConsumed(_ context.Context, id, userID primitive.ObjectID, at time.Time) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	it, ok := f.byID[id]
	if !ok || it.UserID != userID || it.IsConsumed() {
		return nil, errs.ErrAlreadyConsumed
	}
	before := *it
	it.Status = models.StatusConsumed
	it.ConsumedAt = &at
	it.UpdatedAt = at
	return &before, nil
}

func (f *fakeItems) RevertConsumed(_ context.Context, id, userID primitive.ObjectID, status models.ItemStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.byID[id]; ok && it.UserID == userID && it.IsConsumed() {
		it.Status = status
		it.ConsumedAt = nil
		f.reverts++
	}
	return nil
}

func (f *fakeItems) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.byID[id]
	if !ok || it.UserID != userID {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeItems) CountAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User

	listErr        error
	statsUpdates   int
	updateStatsErr error
	levelErr       error
}

var _ UserStore = (*fakeUsers)(nil)

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) get(id primitive.ObjectID) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return nil, errs.ErrAlreadyExists
		}
	}
	user.ID = primitive.NewObjectID()
	c := *user
	f.byID[user.ID] = &c
	return user, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u := f.get(id)
	if u == nil {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListNotifiable(context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.byID {
		if u.Preferences.NotificationsEnabled {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ApplyStats(_ context.Context, id primitive.ObjectID, d models.StatsDelta) (models.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateStatsErr != nil {
		return models.Stats{}, f.updateStatsErr
	}
	u, ok := f.byID[id]
	if !ok {
		return models.Stats{}, errs.ErrNotFound
	}
	u.Stats.ItemsSaved += d.ItemsSaved
	u.Stats.ItemsWasted += d.ItemsWasted
	u.Stats.MoneySaved += d.MoneySaved
	u.Stats.Points += d.Points
	if d.Streak != nil {
		u.Stats.CurrentStreak = d.Streak.Current
		active := d.Streak.LastActive
		u.Stats.LastActiveDate = &active
		if d.Streak.Current > u.Stats.LongestStreak {
			u.Stats.LongestStreak = d.Streak.Current
		}
	}
	f.statsUpdates++
	return u.Stats, nil
}

func (f *fakeUsers) SetLevel(_ context.Context, id primitive.ObjectID, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.levelErr != nil {
		return f.levelErr
	}
	if u, ok := f.byID[id]; ok && level > u.Stats.Level {
		u.Stats.Level = level
	}
	return nil
}

func (f *fakeUsers) UpdatePreferences(_ context.Context, id primitive.ObjectID, prefs models.Preferences, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.Preferences = prefs
	u.PhoneNumber = phone
	return nil
}

func (f *fakeUsers) UpdateLastSeen(_ context.Context, id primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastSeenAt = &at
	}
	return nil
}

func statValue(u *models.User, field string) float64 {
	switch field {
	case "stats.items_saved":
		return float64(u.Stats.ItemsSaved)
	case "stats.current_streak":
		return float64(u.Stats.CurrentStreak)
	default:
		return float64(u.Stats.Points)
	}
}

func (f *fakeUsers) TopUsers(_ context.Context, field string, limit int64) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return statValue(&out[i], field) > statValue(&out[j], field) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) CountAbove(_ context.Context, field string, value float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.byID {
		if statValue(u, field) > value {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) CommunityTotals(context.Context) (repository.CommunityTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var t repository.CommunityTotals
	for _, u := range f.byID {
		t.Users++
		t.ItemsSaved += int64(u.Stats.ItemsSaved)
		t.ItemsWasted += int64(u.Stats.ItemsWasted)
		t.MoneySaved += u.Stats.MoneySaved
	}
	return t, nil
}

type deliveryMark struct {
	email, whatsapp bool
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []*models.Alert

	existsErr     error
	createErr     error
	skipExists    bool
	marks         map[primitive.ObjectID]deliveryMark
	undeliverable map[primitive.ObjectID]string
}

var _ AlertStore = (*fakeAlerts)(nil)

func newFakeAlerts(alerts ...*models.Alert) *fakeAlerts {
	f := &fakeAlerts{
		marks:         map[primitive.ObjectID]deliveryMark{},
		undeliverable: map[primitive.ObjectID]string{},
	}
	for _, a := range alerts {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		f.alerts = append(f.alerts, a)
	}
	return f
}

func (f *fakeAlerts) all() []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Alert, 0, len(f.alerts))
	for _, a := range f.alerts {
		out = append(out, *a)
	}
	return out
}

func (f *fakeAlerts) ExistsForDay(_ context.Context, userID, itemID primitive.ObjectID, days int, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.skipExists {
		return false, nil
	}
	for _, a := range f.alerts {
		if a.UserID == userID && a.ItemID == itemID && a.DaysUntilExpiry == days && !a.TriggerDate.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlerts) Create(_ context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, a := range f.alerts {
		if a.DedupKey != "" && a.DedupKey == alert.DedupKey {
			return errs.ErrAlreadyExists
		}
	}
	alert.ID = primitive.NewObjectID()
	c := *alert
	f.alerts = append(f.alerts, &c)
	return nil
}

func (f *fakeAlerts) ListUnsent(_ context.Context, limit int64) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Alert
	for _, a := range f.alerts {
		if !a.Sent && !a.Undeliverable {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastAttemptAt, out[j].LastAttemptAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAlerts) find(id primitive.ObjectID) *models.Alert {
	for _, a := range f.alerts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAlerts) MarkDelivery(_ context.Context, id primitive.ObjectID, emailSent, whatsappSent bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[id] = deliveryMark{email: emailSent, whatsapp: whatsappSent}
	if a := f.find(id); a != nil {
		a.EmailSent = emailSent
		a.WhatsappSent = whatsappSent
		a.Sent = emailSent || whatsappSent
		a.Attempts++
		a.LastAttemptAt = &at
	}
	return nil
}

func (f *fakeAlerts) MarkUndeliverable(_ context.Context, id primitive.ObjectID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.undeliverable[id] = reason
	if a := f.find(id); a != nil {
		a.Undeliverable = true
		a.UndeliverableReason = reason
	}
	return nil
}

func (f *fakeAlerts) DeleteByItem(_ context.Context, itemID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.alerts[:0]
	for _, a := range f.alerts {
		if a.ItemID != itemID {
			kept = append(kept, a)
		}
	}
	f.alerts = kept
	return nil
}

func (f *fakeAlerts) ListForUser(_ context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Alert{}
	for _, a := range f.alerts {
		if a.UserID == userID && (!unreadOnly || !a.Read) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAlerts) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(id)
	if a == nil || a.UserID != userID {
		return errs.ErrNotFound
	}
	a.Read = true
	return nil
}

func (f *fakeAlerts) DeleteForUser(_ context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.alerts {
		if a.ID == id && a.UserID == userID {
			f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeAchievements struct {
	mu     sync.Mutex
	byUser map[primitive.ObjectID][]models.Achievement

	// racedTypes simulate an unlock recorded by a concurrent check after the list was read.
	racedTypes map[models.AchievementType]bool
}

var _ AchievementStore = (*fakeAchievements)(nil)

func newFakeAchievements() *fakeAchievements {
	return &fakeAchievements{
		byUser:     map[primitive.ObjectID][]models.Achievement{},
		racedTypes: map[models.AchievementType]bool{},
	}
}

func (f *fakeAchievements) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Achievement(nil), f.byUser[userID]...), nil
}

func (f *fakeAchievements) Create(_ context.Context, a *models.Achievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.racedTypes[a.Type] {
		return errs.ErrAlreadyExists
	}
	for _, e := range f.byUser[a.UserID] {
		if e.Type == a.Type {
			return errs.ErrAlreadyExists
		}
	}
	a.ID = primitive.NewObjectID()
	f.byUser[a.UserID] = append(f.byUser[a.UserID], *a)
	return nil
}

type fakeActivities struct {
	mu      sync.Mutex
	entries []models.Activity
}

var _ ActivityStore = (*fakeActivities)(nil)

func (f *fakeActivities) CreateActivity(_ context.Context, a *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *a)
	return nil
}

func (f *fakeActivities) GetUserActivities(_ context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Activity
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].UserID == userID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeActivities) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Type)
	}
	return out
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []email.Message
	send func(ctx context.Context, msg email.Message) error
}

func (f *fakeEmail) Send(ctx context.Context, msg email.Message) error {
	if f.send != nil {
		if err := f.send(ctx, msg); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fakeWhatsApp struct {
	mu    sync.Mutex
	sent  []string
	calls int
	send  func(ctx context.Context, phone, body string) error
}

func (f *fakeWhatsApp) Send(ctx context.Context, phone, body string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.send != nil {
		if err := f.send(ctx, phone, body); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func (p *capturePublisher) Publish(_ primitive.ObjectID, alert models.Alert) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
}
