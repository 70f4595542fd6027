package service

import (
	"context"
	"time"

	"callog/internal/platform/logger"
)

// Run starts the worker loop interpreting finished calls.
// Calls share no state so each linkedid gets its own goroutine, bounded
// by a simple semaphore
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("generator-worker")
	sem := make(chan struct{}, max(1, s.cfg.Concurrency))
	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ids, err := s.repo.ListReadyLinkedIDs(ctx, s.cfg.BatchSize)
			if err != nil {
				log.Error().Err(err).Msg("list ready linkedids failed")
				continue
			}
			for i := range ids {
				id := ids[i]
				if !s.begin(id) {
					continue
				}
				sem <- struct{}{}
				go func() {
					defer func() {
						<-sem
						s.end(id)
					}()
					if err := s.Generate(ctx, id); err != nil {
						log.Warn().Err(err).Str("linkedid", id).Msg("generate failed")
					}
				}()
			}
		}
	}
}

func (s *Svc) interval() time.Duration {
	if s.cfg.Interval <= 0 {
		return 5 * time.Second
	}
	return s.cfg.Interval
}
