// Package pubsub publishes domain events to Google Pub/Sub, or to a local push endpoint in development.
package pubsub

import (
	"context"
	"log/slog"

	"brightsteps/config"
	"brightsteps/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher picks the publisher named by pubsub.provider. An empty
// provider disables publishing.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger.With(slog.String("component", "events"))

	if cfg == nil || cfg.Provider == "" {
		logger.Info("event publishing disabled")

		return discardPublisher{logger: logger}, nil
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	publisher, err := openPublisher(params.Ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.StopHook(func() error {
		logger.Info("closing event publisher", slog.String("provider", cfg.Provider))

		return publisher.Close()
	}))

	return publisher, nil
}

func checkConfig(cfg *config.PubSubConfig) error {
	switch cfg.Provider {
	case config.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return errors.New("pubsub: local endpoint is required for local provider")
		}
	case config.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return errors.New("pubsub: project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return errors.New("pubsub: topic ID is required for google provider")
		}
	default:
		return errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	return nil
}

func openPublisher(ctx context.Context, cfg *config.PubSubConfig, logger *slog.Logger) (service.EventPublisher, error) {
	if cfg.Provider == config.PubSubProviderLocal {
		logger.Info("publishing events to local push endpoint", slog.String("endpoint", cfg.LocalEndpoint))

		return NewPushPublisher(cfg.LocalEndpoint, logger), nil
	}

	logger.Info("publishing events to Google Pub/Sub",
		slog.String("project_id", cfg.ProjectID),
		slog.String("topic_id", cfg.TopicID),
	)

	return NewTopicPublisher(ctx, cfg.ProjectID, cfg.TopicID, logger)
}

// discardPublisher drops every event.
type discardPublisher struct {
	logger *slog.Logger
}

func (p discardPublisher) Publish(_ context.Context, event *service.DomainEvent) error {
	p.logger.Debug("event dropped", slog.String("event_id", event.EventID), slog.String("type", event.Type))

	return nil
}

func (discardPublisher) Close() error { return nil }
