package services

import (
	"context"

	"github.com/openwaterlog/backend/internal/models"
	"github.com/openwaterlog/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// EventService turns inbound system events into notifications when the
// recipient's in-app whitelist allows them. Every decision, delivered or
// suppressed, lands in the audit log.
type EventService struct {
	notifications *NotificationService
	eventLog      repositories.EventLogRepository
	log           zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(notifications *NotificationService, eventLog repositories.EventLogRepository, log zerolog.Logger) *EventService {
	return &EventService{
		notifications: notifications,
		eventLog:      eventLog,
		log:           log,
	}
}

// HandleEvent authorizes the event against the recipient's in-app whitelist
// and materializes a notification when allowed. A suppressed event is not an
// error; the returned notification is nil.
func (s *EventService) HandleEvent(ctx context.Context, event models.Event) (*models.Notification, error) {
	authorized, err := s.notifications.IsNotificationAuthorized(event.RecipientID, models.ChannelInApp, event.Key)
	if err != nil {
		return nil, err
	}

	entry := &models.EventLogEntry{
		Key:         event.Key,
		RecipientID: event.RecipientID,
		Channel:     models.ChannelInApp,
		Authorized:  authorized,
	}
	if err := s.eventLog.RecordDecision(ctx, entry); err != nil {
		// The audit trail must not block delivery.
		s.log.Warn().Err(err).Str("key", event.Key).Msg("failed to record delivery decision")
	}

	if !authorized {
		s.log.Debug().Str("key", event.Key).Uint("recipient", event.RecipientID).Msg("event suppressed by whitelist")
		return nil, nil
	}

	return s.notifications.CreateNotification(event.RecipientID, models.SaveNotificationRequest{
		Icon:    event.Icon,
		Title:   event.Title,
		Message: event.Message,
		Expires: event.Expires,
	})
}

// RecentDecisions returns the newest audit entries, newest first
func (s *EventService) RecentDecisions(ctx context.Context, limit int64) ([]models.EventLogEntry, error) {
	return s.eventLog.GetRecent(ctx, limit)
}
