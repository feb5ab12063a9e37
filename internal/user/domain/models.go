package domain

import "time"

type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) GreetingName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}
