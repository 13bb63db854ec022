package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-addressbook/internal/assistant"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/server"
)

// feedWorker re-imports the source on an interval and republishes both feeds.
type feedWorker struct {
	server   *server.FeedServer
	source   engine.Source
	interval time.Duration // <= 0 refreshes once
	session  func() (*assistant.Assistant, error)
}

// run refreshes immediately, then on every tick until ctx is cancelled.
func (w *feedWorker) run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	w.refreshAndLog(ctx)

	if w.interval <= 0 {
		log.Info(config.MsgWorkerStart, config.LogKeyInterval, config.DisabledInterval)
		<-ctx.Done()
		log.Info(config.MsgWorkerStop)
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			w.refreshAndLog(ctx)
		}
	}
}

func (w *feedWorker) refreshAndLog(ctx context.Context) {
	if err := w.refresh(ctx); err != nil && ctx.Err() == nil {
		slog.Error(config.MsgRefreshFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
	}
}

// refresh imports the source into a fresh book, so contacts removed upstream disappear.
// The previous feeds stay online when the import fails.
func (w *feedWorker) refresh(ctx context.Context) error {
	a, err := w.session()
	if err != nil {
		return err
	}
	count, err := a.Import(ctx, w.source)
	if err != nil {
		return err
	}

	cal, err := a.Calendar()
	if err != nil {
		return err
	}
	upcoming := a.Upcoming()

	w.server.UpdateCalendar(cal)
	w.server.UpdateUpcoming(upcoming.String())

	slog.Info(config.MsgFeedUpdated,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyCount, count,
		config.LogKeyFound, upcoming.Len(),
	)
	return nil
}
