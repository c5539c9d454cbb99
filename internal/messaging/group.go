package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Member is one topic consumer owned by a group.
type Member interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs a set of topic consumers as one unit. It owns the
// shared subscriber, which is closed once every member has stopped.
type ConsumerGroup struct {
	members    []Member
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates an empty consumer group over subscriber.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer with the group.
func (g *ConsumerGroup) Add(member Member) {
	g.members = append(g.members, member)
}

// Start starts every member. When one fails, the members already running are
// shut down before the error returns, so a group never starts half-way.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	topics := make([]string, 0, len(g.members))

	for i, member := range g.members {
		if err := member.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = g.members[j].Shutdown()
			}

			return fmt.Errorf("starting consumer for %s: %w", member.Topic(), err)
		}

		topics = append(topics, member.Topic())
	}

	g.logger.Info("consumer group started", zap.Strings("topics", topics))

	return nil
}

// Shutdown stops every member, then closes the shared subscriber. The first
// error wins but shutdown still reaches every member.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	var firstErr error

	for _, member := range g.members {
		if err := member.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := g.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
