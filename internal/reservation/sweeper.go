package reservation

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes expired reservations from a Store. It is a
// cancellable scheduled task: Start launches the loop, Stop waits for it to
// finish.
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *slog.Logger
	done     chan struct{}
}

func NewSweeper(store Store, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.store.Sweep(ctx)
				if err != nil {
					s.log.Error("reservation sweep failed", slog.Any("error", err))
					continue
				}
				if removed > 0 {
					s.log.Info("swept expired reservations", slog.Int("removed", removed))
				}
			}
		}
	}()
}

// Stop blocks until the sweep loop has exited. The caller cancels the
// context passed to Start first.
func (s *Sweeper) Stop() { <-s.done }
