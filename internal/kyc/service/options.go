package service

import (
	"log/slog"

	"brique/pkg/platform/events"
)

type serviceConfig struct {
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
