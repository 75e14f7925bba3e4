package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipients(t *testing.T) {
	tests := []struct {
		name  string
		event FriendshipEvent
		want  []uint
	}{
		{"sent notifies receiver", FriendshipEvent{Type: FriendRequestSent, SenderID: 1, ReceiverID: 2, ActorID: 1}, []uint{2}},
		{"accepted notifies sender", FriendshipEvent{Type: FriendRequestAccepted, SenderID: 1, ReceiverID: 2, ActorID: 2}, []uint{1}},
		{"removed by sender", FriendshipEvent{Type: FriendshipRemoved, SenderID: 1, ReceiverID: 2, ActorID: 1}, []uint{2}},
		{"unknown actor", FriendshipEvent{Type: FriendshipRemoved, SenderID: 1, ReceiverID: 2}, []uint{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Recipients())
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, []byte("17"), FriendshipEvent{FriendshipID: 17}.Key())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishFriendshipEvent(context.Background(), FriendshipEvent{}))
}
