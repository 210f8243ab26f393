// Package ladderevents publishes ladder domain events as JSON messages.
package ladderevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
)

// Metadata keys set on every message.
const (
	MetadataTopic         = "topic"
	MetadataCorrelationID = attr.CorrelationIDKey
)

// Publisher adapts a watermill publisher to the ladder service.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher wraps pub.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// Publish marshals payload and sends it on topic.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	msg, err := NewMessage(ctx, topic, payload)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

// NewMessage builds the message for one event.
func NewMessage(ctx context.Context, topic string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(uuid.NewString(), body)
	msg.Metadata.Set(MetadataTopic, topic)
	if id := attr.CorrelationID(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	msg.SetContext(ctx)
	return msg, nil
}
