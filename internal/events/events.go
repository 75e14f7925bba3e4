// Package events defines the friendship notifications published after a
// friendship changes state.
package events

import (
	"context"
	"strconv"
	"time"
)

// Type names a friendship transition.
type Type string

const (
	FriendRequestSent     Type = "friend_request.sent"
	FriendRequestAccepted Type = "friend_request.accepted"
	FriendRequestRejected Type = "friend_request.rejected"
	FriendshipRemoved     Type = "friendship.removed"
)

// FriendshipEvent is emitted once the change is committed.
type FriendshipEvent struct {
	Type         Type      `json:"type"`
	FriendshipID uint      `json:"friendshipId"`
	SenderID     uint      `json:"senderId"`
	ReceiverID   uint      `json:"receiverId"`
	ActorID      uint      `json:"actorId"`
	Timestamp    time.Time `json:"timestamp"`
}

// Recipients returns the users that should be told about the event: every
// party except the one who caused it.
func (e FriendshipEvent) Recipients() []uint {
	var out []uint
	for _, id := range []uint{e.SenderID, e.ReceiverID} {
		if id != 0 && id != e.ActorID {
			out = append(out, id)
		}
	}
	return out
}

// Key is the partitioning key, events of one friendship stay ordered.
func (e FriendshipEvent) Key() []byte {
	return []byte(strconv.FormatUint(uint64(e.FriendshipID), 10))
}

// Publisher delivers friendship events to interested consumers.
type Publisher interface {
	PublishFriendshipEvent(ctx context.Context, event FriendshipEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishFriendshipEvent(context.Context, FriendshipEvent) error { return nil }

// Notification is the envelope pushed to WebSocket clients.
type Notification struct {
	Type Type            `json:"type"`
	Data FriendshipEvent `json:"data"`
}
