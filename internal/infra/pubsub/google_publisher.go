package pubsub

import (
	"context"
	"log/slog"

	"brightsteps/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// topicPublisher sends events to a Google Pub/Sub topic. Events of one user
// share an ordering key so subscribers see them in the order they happened.
type topicPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewTopicPublisher connects to projectID and checks that topicID exists.
func NewTopicPublisher(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "pubsub: new client")
	}

	topic := "projects/" + projectID + "/topics/" + topicID
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic}); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "pubsub: topic %s", topic)
	}

	publisher := client.Publisher(topicID)
	publisher.EnableMessageOrdering = true

	return &topicPublisher{client: client, publisher: publisher, logger: logger}, nil
}

func (p *topicPublisher) Publish(ctx context.Context, event *service.DomainEvent) error {
	payload, attrs, err := encode(event)
	if err != nil {
		return err
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:        payload,
		Attributes:  attrs,
		OrderingKey: event.UserID,
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		// a failed ordered publish pauses the key until resumed
		p.publisher.ResumePublish(event.UserID)

		return errors.Wrapf(err, "pubsub: publish %s", event.Type)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_id", event.EventID),
		slog.String("type", event.Type),
		slog.String("server_id", serverID),
	)

	return nil
}

func (p *topicPublisher) Close() error {
	p.publisher.Stop()

	return errors.WithStack(p.client.Close())
}
