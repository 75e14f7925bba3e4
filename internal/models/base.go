package models

import "time"

// BaseModel defines the common fields for all models.
// Rows are hard-deleted: the unique indexes on films and friendships must
// allow a deleted pair or title to be created again.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
