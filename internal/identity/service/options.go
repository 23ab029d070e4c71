package service

import (
	"log/slog"

	"brique/pkg/platform/events"
)

type serviceConfig struct {
	cache     Cache
	logger    *slog.Logger
	publisher events.Publisher
	metrics   Metrics
}

// Option configures optional service collaborators.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

func WithEventPublisher(publisher events.Publisher) Option {
	return func(cfg *serviceConfig) { cfg.publisher = publisher }
}

func WithMetrics(metrics Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = metrics }
}

// WithCache wires the verification read cache. Mutations invalidate the
// cached flag before the event is emitted.
func WithCache(cache Cache) Option {
	return func(cfg *serviceConfig) { cfg.cache = cache }
}
