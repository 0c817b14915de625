package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/repositories"
	"github.com/openwaterlog/backend/internal/services"
	"github.com/openwaterlog/backend/validators"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// fakeUserRepo holds users in memory, keyed by username.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.users[user.Username] = user
	return nil
}

// memNotificationRepo mirrors the Postgres repository's observable behavior.
type memNotificationRepo struct {
	records map[string]*models.Notification
	nextID  int
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{records: make(map[string]*models.Notification)}
}

func (r *memNotificationRepo) CreateNotification(n *models.Notification) error {
	if n.ID == "" {
		r.nextID++
		n.ID = fmt.Sprintf("n-%d", r.nextID)
	}
	clone := *n
	r.records[n.ID] = &clone
	return nil
}

func (r *memNotificationRepo) GetByID(recipientID uint, id string) (*models.Notification, error) {
	n, ok := r.records[id]
	if !ok || n.RecipientID != recipientID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *memNotificationRepo) ListByRecipient(recipientID uint, filter repositories.NotificationFilter) ([]models.Notification, int64, error) {
	var matched []models.Notification
	for _, n := range r.records {
		if n.RecipientID != recipientID {
			continue
		}
		if !filter.ShowDismissed && n.Dismissed {
			continue
		}
		if filter.ShowAfter != nil && n.Active.Before(*filter.ShowAfter) {
			continue
		}
		matched = append(matched, *n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Active.After(matched[j].Active) })
	total := int64(len(matched))
	if filter.Skip >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memNotificationRepo) UpdateNotification(n *models.Notification) error {
	clone := *n
	r.records[n.ID] = &clone
	return nil
}

func (r *memNotificationRepo) SetDismissed(recipientID uint, id string, dismissed bool) error {
	if n, ok := r.records[id]; ok && n.RecipientID == recipientID {
		n.Dismissed = dismissed
	}
	return nil
}

func (r *memNotificationRepo) BulkSetDismissed(recipientID uint, ids []string, dismissed bool) (int64, error) {
	var count int64
	seen := make(map[string]struct{})
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if n, ok := r.records[id]; ok && n.RecipientID == recipientID {
			n.Dismissed = dismissed
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) DeleteByIDs(recipientID uint, ids []string) (int64, error) {
	var count int64
	seen := make(map[string]struct{})
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if n, ok := r.records[id]; ok && n.RecipientID == recipientID {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) PurgeExpired(now time.Time) (int64, error) {
	var count int64
	for id, n := range r.records {
		if n.Expired(now) {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

// memWhitelistRepo holds whitelist rows in memory.
type memWhitelistRepo struct {
	rows map[string]*models.NotificationWhitelist
}

func newMemWhitelistRepo() *memWhitelistRepo {
	return &memWhitelistRepo{rows: make(map[string]*models.NotificationWhitelist)}
}

func (r *memWhitelistRepo) GetWhitelist(ownerID uint, channel string) (*models.NotificationWhitelist, error) {
	wl, ok := r.rows[fmt.Sprintf("%d/%s", ownerID, channel)]
	if !ok {
		return nil, nil
	}
	clone := *wl
	return &clone, nil
}

func (r *memWhitelistRepo) ReplaceWhitelist(ownerID uint, channel string, patterns models.PatternList) (*models.NotificationWhitelist, error) {
	wl := &models.NotificationWhitelist{OwnerID: ownerID, Channel: channel, Patterns: patterns}
	r.rows[fmt.Sprintf("%d/%s", ownerID, channel)] = wl
	clone := *wl
	return &clone, nil
}

// memEventLogRepo collects audit entries in memory.
type memEventLogRepo struct {
	entries []models.EventLogEntry
}

func (r *memEventLogRepo) RecordDecision(_ context.Context, entry *models.EventLogEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memEventLogRepo) GetRecent(_ context.Context, limit int64) ([]models.EventLogEntry, error) {
	out := make([]models.EventLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

// testEnv bundles a wired handler stack over in-memory stores.
type testEnv struct {
	echo      *echo.Echo
	users     *fakeUserRepo
	notifRepo *memNotificationRepo
	service   *services.NotificationService
	handler   *NotificationHandler
	whitelist *WhitelistHandler
	events    *EventHandler
	eventLog  *memEventLogRepo
}

var (
	alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	bob   = &models.User{ID: 2, Username: "bob", Email: "bob@example.com"}
	root  = &models.User{ID: 3, Username: "root", Email: "root@example.com", IsAdmin: true}
)

func newTestEnv(_ *testing.T) *testEnv {
	e := echo.New()
	e.Validator = validators.NewValidator()

	users := newFakeUserRepo(alice, bob, root)
	notifRepo := newMemNotificationRepo()
	wlRepo := newMemWhitelistRepo()
	eventLog := &memEventLogRepo{}

	service := services.NewNotificationService(notifRepo, wlRepo, zerolog.Nop())
	eventService := services.NewEventService(service, eventLog, zerolog.Nop())

	return &testEnv{
		echo:      e,
		users:     users,
		notifRepo: notifRepo,
		service:   service,
		handler:   NewNotificationHandler(service, users),
		whitelist: NewWhitelistHandler(service, users),
		events:    NewEventHandler(eventService),
		eventLog:  eventLog,
	}
}

func claimsFor(u *models.User) *models.JwtCustomClaims {
	return &models.JwtCustomClaims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}

// newRequest builds an echo context with JWT claims and path params applied.
// Path params come in name/value pairs after the claims.
func (env *testEnv) newRequest(method, target, body string, claims *models.JwtCustomClaims, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	if claims != nil {
		c.Set("user", claims)
	}
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return http.StatusOK
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func seedRecord(t *testing.T, env *testEnv, recipientID uint, title string, active time.Time) *models.Notification {
	t.Helper()
	n, err := env.service.CreateNotification(recipientID, models.SaveNotificationRequest{
		Icon: "bell", Title: title, Message: "m", Active: &active,
	})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}
