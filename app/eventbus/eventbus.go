// Package eventbus connects the service to its message broker. With a NATS
// URL configured events go to NATS; otherwise they stay in process on a
// watermill go channel.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"

	"github.com/Black-And-White-Club/skill-ladder/config"
)

// EventBus owns the publisher (and, in process, the subscriber) for domain events.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewEventBus creates the bus described by cfg.
func NewEventBus(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.URL == "" {
		logger.InfoContext(ctx, "No NATS URL configured, keeping events in process")
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &EventBus{publisher: ch, subscriber: ch, logger: logger}, nil
	}

	opts := []nc.Option{
		nc.Name("skill-ladder"),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}
	if cfg.NKeySeed != "" {
		opt, err := NKeyOption(cfg.NKeySeed)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	marshaler := &wmnats.NATSMarshaler{}
	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: opts,
			Marshaler:   marshaler,
			JetStream:   wmnats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create NATS publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	logger.InfoContext(ctx, "Connected event bus to NATS", slog.String("url", cfg.URL))
	return &EventBus{publisher: publisher, logger: logger}, nil
}

// NKeyOption authenticates the connection with an nkey user seed.
func NKeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive NATS public key: %w", err)
	}
	if !nkeys.IsValidPublicUserKey(pub) {
		return nil, fmt.Errorf("NATS nkey seed is not a user seed")
	}
	return nc.Nkey(pub, func(nonce []byte) ([]byte, error) {
		return kp.Sign(nonce)
	}), nil
}

// Publisher returns the watermill publisher events are sent through.
func (eb *EventBus) Publisher() message.Publisher {
	return eb.publisher
}

// Subscribe streams messages on topic. Only the in-process bus supports it;
// NATS consumers subscribe with their own clients.
func (eb *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if eb.subscriber == nil {
		return nil, fmt.Errorf("subscribing is not supported on this bus")
	}
	return eb.subscriber.Subscribe(ctx, topic)
}

// Close releases the broker connection.
func (eb *EventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	return nil
}
