package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"filmtrack/internal/events"
)

// FriendshipEventPublisher publishes friendship events as JSON, keyed by
// friendship id.
type FriendshipEventPublisher struct {
	producer MessageProducer
	topic    string
}

// NewFriendshipEventPublisher creates a publisher writing to topic.
func NewFriendshipEventPublisher(producer MessageProducer, topic string) *FriendshipEventPublisher {
	return &FriendshipEventPublisher{producer: producer, topic: topic}
}

func (p *FriendshipEventPublisher) PublishFriendshipEvent(ctx context.Context, event events.FriendshipEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal friendship event: %w", err)
	}
	return p.producer.SendMessage(ctx, p.topic, event.Key(), payload)
}

var _ events.Publisher = (*FriendshipEventPublisher)(nil)
