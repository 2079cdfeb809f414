package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/gala/internal/shared/domain"
)

// Publisher sends serialized events to a message broker.
type Publisher interface {
	// Publish sends a message under the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// PublishDomainEvent marshals a domain event and publishes it under its
// routing key.
func PublishDomainEvent(ctx context.Context, p Publisher, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event %s: %w", event.RoutingKey(), err)
	}
	return p.Publish(ctx, event.RoutingKey(), payload)
}
