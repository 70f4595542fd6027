package module

import (
	"time"

	"callog/internal/platform/config"
)

// Options controls the generator worker
type Options struct {
	Interval    time.Duration
	Concurrency int
	BatchSize   int
}

// FromConfig reads with CALLOG_GEN_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CALLOG_GEN_")
	return Options{
		Interval:    c.MayDuration("INTERVAL", 5*time.Second),
		Concurrency: c.MayInt("CONCURRENCY", 4),
		BatchSize:   c.MayInt("BATCH_SIZE", 64),
	}
}
