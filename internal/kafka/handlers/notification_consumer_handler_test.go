package kafkahandlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"filmtrack/internal/events"
)

type fakeNotifier struct {
	sent map[uint][][]byte
}

func (f *fakeNotifier) SendToUser(userID uint, payload []byte) bool {
	f.sent[userID] = append(f.sent[userID], payload)
	return true
}

func TestProcessNotifiesRecipients(t *testing.T) {
	n := &fakeNotifier{sent: map[uint][][]byte{}}
	h := NewNotificationConsumerLogic(n, zaptest.NewLogger(t))

	raw, err := json.Marshal(events.FriendshipEvent{
		Type: events.FriendRequestSent, FriendshipID: 3, SenderID: 1, ReceiverID: 2, ActorID: 1,
	})
	require.NoError(t, err)
	require.NoError(t, h.Process(context.Background(), raw))

	assert.Empty(t, n.sent[1], "actor is not notified")
	require.Len(t, n.sent[2], 1)

	var got events.Notification
	require.NoError(t, json.Unmarshal(n.sent[2][0], &got))
	assert.Equal(t, events.FriendRequestSent, got.Type)
	assert.Equal(t, uint(3), got.Data.FriendshipID)
}

func TestProcessSkipsMalformed(t *testing.T) {
	n := &fakeNotifier{sent: map[uint][][]byte{}}
	h := NewNotificationConsumerLogic(n, zaptest.NewLogger(t))

	assert.NoError(t, h.Process(context.Background(), []byte("{not json")))
	assert.Empty(t, n.sent)
}
