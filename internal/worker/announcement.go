// Package worker runs the periodic background jobs of the server.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AnnouncementRefresher rebuilds the cached announcement.
type AnnouncementRefresher interface {
	CacheAnnouncement(ctx context.Context) (string, error)
}

// AnnouncementWorker refreshes the nearly-sold-out announcement on a fixed
// interval.
type AnnouncementWorker struct {
	svc      AnnouncementRefresher
	interval time.Duration
	log      zerolog.Logger
}

// NewAnnouncementWorker constructs a worker.  A non-positive interval
// defaults to one hour.
func NewAnnouncementWorker(svc AnnouncementRefresher, interval time.Duration, log zerolog.Logger) *AnnouncementWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AnnouncementWorker{svc: svc, interval: interval, log: log}
}

// Run refreshes once immediately and then on every tick until ctx is
// canceled.
func (w *AnnouncementWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("announcement worker starting")
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("announcement worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *AnnouncementWorker) refresh(ctx context.Context) {
	text, err := w.svc.CacheAnnouncement(ctx)
	if err != nil {
		// Next tick retries.
		w.log.Error().Err(err).Msg("refresh announcement")
		return
	}
	w.log.Debug().Bool("announced", text != "").Msg("announcement refreshed")
}
