package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/notifications"
	"github.com/openwaterlog/backend/internal/repositories"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultListLimit caps a listing page when the caller does not ask for a
// specific window.
const DefaultListLimit = 50

// ListOptions narrows and pages a notification listing. Zero Limit means
// DefaultListLimit; negative Skip or Limit is a caller error.
type ListOptions struct {
	Skip          int
	Limit         int
	ShowDismissed bool
	ShowAfter     *time.Time
}

// NotificationService orchestrates the notification lifecycle: delivery
// authorization against the per-channel whitelist, listing, creation,
// dismissal, bulk edits and the expiry purge. It is role-agnostic; the HTTP
// boundary decides who may call what.
type NotificationService struct {
	notifRepo repositories.NotificationRepository
	wlRepo    repositories.WhitelistRepository
	log       zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repositories.NotificationRepository, wlRepo repositories.WhitelistRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		wlRepo:    wlRepo,
		log:       log,
	}
}

// IsNotificationAuthorized reports whether an event key may produce a
// notification for the user on the given channel. A user with no whitelist
// record for the channel gets everything (default-allow); an explicit empty
// whitelist gets nothing.
func (s *NotificationService) IsNotificationAuthorized(userID uint, channel, eventKey string) (bool, error) {
	if err := notifications.ValidateEventKey(eventKey); err != nil {
		return false, err
	}

	whitelist, err := s.wlRepo.GetWhitelist(userID, channel)
	if err != nil {
		return false, err
	}

	var stored []notifications.TopicPattern
	exists := whitelist != nil
	if exists {
		// Patterns were validated on write; a parse failure here means the
		// row was corrupted outside the API.
		stored, err = notifications.ParsePatterns(whitelist.Patterns)
		if err != nil {
			return false, err
		}
	}

	effective := notifications.ResolveEffectivePatterns(stored, exists)
	return notifications.Matches(eventKey, effective), nil
}

// ListNotifications returns the user's notifications ordered by activation
// time descending. TotalCount covers the whole filtered set regardless of
// the page window. Dismissed records are excluded unless ShowDismissed.
func (s *NotificationService) ListNotifications(userID uint, opts ListOptions) (*models.NotificationList, error) {
	if opts.Skip < 0 {
		return nil, &notifications.ValidationError{Field: "skip", Value: strconv.Itoa(opts.Skip), Msg: "must be non-negative"}
	}
	if opts.Limit < 0 {
		return nil, &notifications.ValidationError{Field: "limit", Value: strconv.Itoa(opts.Limit), Msg: "must be non-negative"}
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	data, total, err := s.notifRepo.ListByRecipient(userID, repositories.NotificationFilter{
		Skip:          opts.Skip,
		Limit:         limit,
		ShowDismissed: opts.ShowDismissed,
		ShowAfter:     opts.ShowAfter,
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []models.Notification{}
	}
	return &models.NotificationList{Data: data, TotalCount: total}, nil
}

// GetNotification returns nil (not an error) both when the id does not exist
// and when it belongs to another user; the caller cannot tell the two apart.
func (s *NotificationService) GetNotification(userID uint, id string) (*models.Notification, error) {
	notification, err := s.notifRepo.GetByID(userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// CreateNotification materializes a new record. Active defaults to now;
// Dismissed always starts false regardless of input; a non-nil Expires must
// not precede Active.
func (s *NotificationService) CreateNotification(recipientID uint, req models.SaveNotificationRequest) (*models.Notification, error) {
	active := time.Now()
	if req.Active != nil {
		active = *req.Active
	}
	if err := validateExpiry(active, req.Expires); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		Icon:        req.Icon,
		Title:       req.Title,
		Message:     req.Message,
		Active:      active,
		Expires:     req.Expires,
		Dismissed:   false,
	}
	if err := s.notifRepo.CreateNotification(notification); err != nil {
		return nil, err
	}
	s.log.Debug().Str("id", notification.ID).Uint("recipient", recipientID).Msg("notification created")
	return notification, nil
}

// UpdateNotification overwrites the record's content and re-activates it
// (dismissed becomes false) on every update. Returns nil for missing or
// foreign ids, mirroring GetNotification.
func (s *NotificationService) UpdateNotification(userID uint, id string, req models.SaveNotificationRequest) (*models.Notification, error) {
	notification, err := s.GetNotification(userID, id)
	if err != nil || notification == nil {
		return nil, err
	}

	active := notification.Active
	if req.Active != nil {
		active = *req.Active
	}
	if err := validateExpiry(active, req.Expires); err != nil {
		return nil, err
	}

	notification.Icon = req.Icon
	notification.Title = req.Title
	notification.Message = req.Message
	notification.Active = active
	notification.Expires = req.Expires
	notification.Dismissed = false

	if err := s.notifRepo.UpdateNotification(notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// MarkDismissed sets the dismissed flag. Setting the current state again is
// a no-op that still reports success. The returned bool is false when the
// record is missing or foreign-owned.
func (s *NotificationService) MarkDismissed(userID uint, id string, dismissed bool) (bool, error) {
	notification, err := s.GetNotification(userID, id)
	if err != nil {
		return false, err
	}
	if notification == nil {
		return false, nil
	}
	if err := s.notifRepo.SetDismissed(userID, id, dismissed); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteNotifications removes the listed records owned by the user in a
// single statement and returns how many were actually deleted. Missing,
// foreign-owned and duplicated ids lower the count; they never error.
func (s *NotificationService) DeleteNotifications(userID uint, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.notifRepo.DeleteByIDs(userID, ids)
}

// BulkSetDismissed is DeleteNotifications' counterpart for the dismissed
// flag, with the same ownership-filtered count semantics.
func (s *NotificationService) BulkSetDismissed(userID uint, ids []string, dismissed bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.notifRepo.BulkSetDismissed(userID, ids, dismissed)
}

// PurgeExpiredNotifications deletes every record across all users whose
// expiry is at or before now. Records without an expiry are untouched, as
// is whitelist and dismissed state, so the sweep is safe alongside request
// traffic.
func (s *NotificationService) PurgeExpiredNotifications(now time.Time) (int64, error) {
	count, err := s.notifRepo.PurgeExpired(now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info().Int64("count", count).Msg("purged expired notifications")
	}
	return count, nil
}

// GetWhitelist returns the stored pattern list for the pair in its original
// order. Absence is presented as the effective allow-all list.
func (s *NotificationService) GetWhitelist(ownerID uint, channel string) (models.PatternList, error) {
	whitelist, err := s.wlRepo.GetWhitelist(ownerID, channel)
	if err != nil {
		return nil, err
	}
	if whitelist == nil {
		return models.PatternList{notifications.Wildcard}, nil
	}
	if whitelist.Patterns == nil {
		return models.PatternList{}, nil
	}
	return whitelist.Patterns, nil
}

// ReplaceWhitelist validates every pattern and overwrites the pair's list
// wholesale, creating the row on first write. A malformed pattern fails the
// whole replace.
func (s *NotificationService) ReplaceWhitelist(ownerID uint, channel string, patterns []string) (models.PatternList, error) {
	if _, err := notifications.ParsePatterns(patterns); err != nil {
		return nil, err
	}
	stored, err := s.wlRepo.ReplaceWhitelist(ownerID, channel, models.PatternList(patterns))
	if err != nil {
		return nil, err
	}
	return stored.Patterns, nil
}

func validateExpiry(active time.Time, expires *time.Time) error {
	if expires != nil && expires.Before(active) {
		return &notifications.ValidationError{
			Field: "expires",
			Value: expires.Format(time.RFC3339),
			Msg:   "must not precede the activation time",
		}
	}
	return nil
}
