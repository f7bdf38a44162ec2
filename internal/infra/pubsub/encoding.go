package pubsub

import (
	"encoding/json"

	"brightsteps/internal/domain/service"

	"github.com/pkg/errors"
)

// encode returns the JSON payload of an event and the message attributes
// subscribers filter on.
func encode(event *service.DomainEvent) ([]byte, map[string]string, error) {
	if event == nil {
		return nil, nil, errors.New("pubsub: nil event")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, errors.Wrap(err, "pubsub: encode event")
	}

	attrs := map[string]string{
		"event_id":   event.EventID,
		"event_type": event.Type,
		"user_id":    event.UserID,
	}
	if event.RequestID != "" {
		attrs["request_id"] = event.RequestID
	}

	return payload, attrs, nil
}
