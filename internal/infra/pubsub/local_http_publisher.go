package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"brightsteps/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	localSubscription = "projects/local/subscriptions/user-events"
	pushTimeout       = 10 * time.Second
)

// PushRequest is the body a Pub/Sub push subscription delivers. The local
// publisher posts the same shape so a consumer can run unchanged against either.
type PushRequest struct {
	Message      PushedMessage `json:"message"`
	Subscription string        `json:"subscription"`
}

// PushedMessage carries the base64 payload; encoding/json encodes []byte as base64.
type PushedMessage struct {
	Data        []byte            `json:"data"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	MessageID   string            `json:"messageId"`
	PublishTime time.Time         `json:"publishTime"`
}

type pushPublisher struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewPushPublisher posts every event to endpoint.
func NewPushPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &pushPublisher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: pushTimeout},
		logger:   logger,
	}
}

func (p *pushPublisher) Publish(ctx context.Context, event *service.DomainEvent) error {
	payload, attrs, err := encode(event)
	if err != nil {
		return err
	}

	body, err := json.Marshal(PushRequest{
		Subscription: localSubscription,
		Message: PushedMessage{
			Data:        payload,
			Attributes:  attrs,
			MessageID:   event.EventID,
			PublishTime: time.Now().UTC(),
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.RequestID != "" {
		req.Header.Set("X-Request-Id", event.RequestID)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "pubsub: push event")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return errors.Errorf("pubsub: push endpoint answered %d", resp.StatusCode)
	}

	p.logger.DebugContext(ctx, "event pushed", slog.String("event_id", event.EventID), slog.String("type", event.Type))

	return nil
}

func (p *pushPublisher) Close() error {
	p.client.CloseIdleConnections()

	return nil
}
