package models

// User 代表系统中的用户。
type User struct {
	BaseModel
	Name          string  `gorm:"type:varchar(100);not null" json:"name"`
	Email         string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string  `gorm:"type:varchar(255);not null" json:"-"` // 不暴露密码哈希
	Image         *string `gorm:"type:varchar(512)" json:"image"`
	Bio           *string `gorm:"type:text" json:"bio"`
	EmailVerified bool    `gorm:"not null;default:false" json:"emailVerified"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}

// UserProfile 是附加在好友关系和搜索结果上的公开用户信息。
type UserProfile struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
	Bio   *string `json:"bio"`
}

// UserProfileColumns 是查询 UserProfile 时选择的列。
var UserProfileColumns = []string{"id", "name", "email", "image", "bio"}

// Profile 返回用户的公开信息。
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, Bio: u.Bio}
}
