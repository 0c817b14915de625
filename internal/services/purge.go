package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// PurgeWorker runs the expiry sweep on a cron schedule. The sweep only ever
// removes rows matching the expiry predicate, so it needs no coordination
// with request traffic.
type PurgeWorker struct {
	notifications *NotificationService
	schedule      string
	cron          *cron.Cron
	log           zerolog.Logger
}

// NewPurgeWorker creates a worker with a cron schedule such as "@hourly" or
// "*/30 * * * *".
func NewPurgeWorker(notifications *NotificationService, schedule string, log zerolog.Logger) *PurgeWorker {
	return &PurgeWorker{
		notifications: notifications,
		schedule:      schedule,
		log:           log,
	}
}

// Start registers the sweep and begins the schedule.
func (w *PurgeWorker) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, w.run); err != nil {
		return err
	}
	c.Start()
	w.cron = c
	w.log.Info().Str("schedule", w.schedule).Msg("notification purge worker started")
	return nil
}

// Stop halts the schedule. A sweep already in flight finishes.
func (w *PurgeWorker) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}

func (w *PurgeWorker) run() {
	count, err := w.notifications.PurgeExpiredNotifications(time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("notification purge failed")
		return
	}
	w.log.Debug().Int64("count", count).Msg("notification purge completed")
}
