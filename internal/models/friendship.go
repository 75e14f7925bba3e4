package models

import "gorm.io/gorm"

// FriendshipStatus is the persisted state of a friendship row.
// Rejection deletes the row, so there is no rejected state.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed request between two users that becomes a
// friendship once the receiver accepts it.
//
// PairLow/PairHigh hold the unordered pair and carry the unique index, so at
// most one row can exist for {A, B} regardless of direction.
type Friendship struct {
	BaseModel
	SenderID   uint             `gorm:"not null;index" json:"senderId"`
	ReceiverID uint             `gorm:"not null;index" json:"receiverId"`
	Status     FriendshipStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PairLow    uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	PairHigh   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`

	Sender   *UserProfile `gorm:"-" json:"sender,omitempty"`
	Receiver *UserProfile `gorm:"-" json:"receiver,omitempty"`
}

// TableName 指定 Friendship 模型的表名。
func (Friendship) TableName() string {
	return "friendships"
}

// EnsureCanonicalOrder fills PairLow with the smaller and PairHigh with the
// larger of the two user IDs. Sender and receiver keep their direction.
func (f *Friendship) EnsureCanonicalOrder() {
	f.PairLow, f.PairHigh = f.SenderID, f.ReceiverID
	if f.PairLow > f.PairHigh {
		f.PairLow, f.PairHigh = f.PairHigh, f.PairLow
	}
}

// BeforeCreate keeps the pair columns in sync with the direction.
func (f *Friendship) BeforeCreate(*gorm.DB) error {
	f.EnsureCanonicalOrder()
	return nil
}

// OtherParty returns the ID of the user on the other side of the friendship.
func (f *Friendship) OtherParty(userID uint) uint {
	if f.SenderID == userID {
		return f.ReceiverID
	}
	return f.SenderID
}

// FriendEntry is one accepted friendship seen from one of its parties.
type FriendEntry struct {
	FriendshipID uint        `json:"friendshipId"`
	Friend       UserProfile `json:"friend"`
}

// FriendshipStatusView describes the relationship between two users.
// Status is "none" when no row exists.
type FriendshipStatusView struct {
	Status       string `json:"status"`
	FriendshipID *uint  `json:"friendshipId"`
	IsSender     *bool  `json:"isSender,omitempty"`
}

// StatusNone is reported when two users have no friendship row.
const StatusNone = "none"
