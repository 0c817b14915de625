package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/repositories"
	"gorm.io/gorm"
)

// fakeNotificationRepo is an in-memory NotificationRepository with the same
// observable semantics as the Postgres implementation.
type fakeNotificationRepo struct {
	records map[string]*models.Notification
	nextID  int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: make(map[string]*models.Notification)}
}

func (r *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	if n.ID == "" {
		r.nextID++
		n.ID = fmt.Sprintf("n-%d", r.nextID)
	}
	clone := *n
	r.records[n.ID] = &clone
	return nil
}

func (r *fakeNotificationRepo) GetByID(recipientID uint, id string) (*models.Notification, error) {
	n, ok := r.records[id]
	if !ok || n.RecipientID != recipientID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *fakeNotificationRepo) ListByRecipient(recipientID uint, filter repositories.NotificationFilter) ([]models.Notification, int64, error) {
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

func (r *fakeNotificationRepo) UpdateNotification(n *models.Notification) error {
	if _, ok := r.records[n.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *n
	r.records[n.ID] = &clone
	return nil
}

func (r *fakeNotificationRepo) SetDismissed(recipientID uint, id string, dismissed bool) error {
	n, ok := r.records[id]
	if ok && n.RecipientID == recipientID {
		n.Dismissed = dismissed
	}
	return nil
}

func (r *fakeNotificationRepo) BulkSetDismissed(recipientID uint, ids []string, dismissed bool) (int64, error) {
	var count int64
	for _, id := range uniqueIDs(ids) {
		if n, ok := r.records[id]; ok && n.RecipientID == recipientID {
			n.Dismissed = dismissed
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteByIDs(recipientID uint, ids []string) (int64, error) {
	var count int64
	for _, id := range uniqueIDs(ids) {
		if n, ok := r.records[id]; ok && n.RecipientID == recipientID {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) PurgeExpired(now time.Time) (int64, error) {
	var count int64
	for id, n := range r.records {
		if n.Expired(now) {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// fakeWhitelistRepo is an in-memory WhitelistRepository.
type fakeWhitelistRepo struct {
	rows map[string]*models.NotificationWhitelist
}

func newFakeWhitelistRepo() *fakeWhitelistRepo {
	return &fakeWhitelistRepo{rows: make(map[string]*models.NotificationWhitelist)}
}

func wlKey(ownerID uint, channel string) string {
	return fmt.Sprintf("%d/%s", ownerID, channel)
}

func (r *fakeWhitelistRepo) GetWhitelist(ownerID uint, channel string) (*models.NotificationWhitelist, error) {
	wl, ok := r.rows[wlKey(ownerID, channel)]
	if !ok {
		return nil, nil
	}
	clone := *wl
	return &clone, nil
}

func (r *fakeWhitelistRepo) ReplaceWhitelist(ownerID uint, channel string, patterns models.PatternList) (*models.NotificationWhitelist, error) {
	wl := &models.NotificationWhitelist{OwnerID: ownerID, Channel: channel, Patterns: patterns}
	r.rows[wlKey(ownerID, channel)] = wl
	clone := *wl
	return &clone, nil
}

// fakeEventLogRepo collects audit entries in memory.
type fakeEventLogRepo struct {
	entries []models.EventLogEntry
	failing bool
}

func (r *fakeEventLogRepo) RecordDecision(_ context.Context, entry *models.EventLogEntry) error {
	if r.failing {
		return errors.New("mongo unavailable")
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeEventLogRepo) GetRecent(_ context.Context, limit int64) ([]models.EventLogEntry, error) {
	if r.failing {
		return nil, errors.New("mongo unavailable")
	}
	out := make([]models.EventLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
