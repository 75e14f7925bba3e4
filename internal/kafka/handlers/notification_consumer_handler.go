package kafkahandlers

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"filmtrack/internal/events"
)

// Notifier pushes a payload to every open connection of a user.
type Notifier interface {
	SendToUser(userID uint, payload []byte) bool
}

// NotificationConsumerLogic turns friendship events into WebSocket notifications.
type NotificationConsumerLogic struct {
	notifier Notifier
	log      *zap.Logger
}

// NewNotificationConsumerLogic creates a new instance of NotificationConsumerLogic.
func NewNotificationConsumerLogic(notifier Notifier, log *zap.Logger) *NotificationConsumerLogic {
	return &NotificationConsumerLogic{notifier: notifier, log: log.Named("notifications")}
}

// HandleFriendshipEvent is the kafka.MessageHandler for the friendship topic.
func (h *NotificationConsumerLogic) HandleFriendshipEvent(ctx context.Context, msg *kafka.Message) error {
	return h.Process(ctx, msg.Value)
}

// Process decodes one event and notifies its recipients. Malformed payloads
// are logged and skipped so they do not block the partition.
func (h *NotificationConsumerLogic) Process(_ context.Context, value []byte) error {
	var ev events.FriendshipEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		h.log.Warn("skipping malformed friendship event", zap.ByteString("value", value), zap.Error(err))
		return nil
	}

	payload, err := json.Marshal(events.Notification{Type: ev.Type, Data: ev})
	if err != nil {
		return err
	}

	for _, userID := range ev.Recipients() {
		delivered := h.notifier.SendToUser(userID, payload)
		h.log.Debug("friendship notification",
			zap.String("type", string(ev.Type)),
			zap.Uint("userId", userID),
			zap.Bool("online", delivered))
	}
	return nil
}
