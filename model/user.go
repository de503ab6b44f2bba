package model

import "time"

// User 用户模型
// PasswordHash and the lockout bookkeeping never leave the store boundary:
// both carry `json:"-"` so no response can serialize them.
type User struct {
	ID           string `gorm:"primarykey;size:36" json:"id"`
	Username     string `gorm:"uniqueIndex;not null;size:20" json:"username"`
	Email        string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string `gorm:"not null;size:255" json:"-"`
	Gender       string `gorm:"size:32" json:"gender,omitempty"`
	Avatar       string `gorm:"type:text" json:"avatar,omitempty"`

	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `gorm:"index" json:"-"`
	LastLogin           *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LockedFor reports the remaining lockout duration, zero when the account is
// open or the window has elapsed.
func (u *User) LockedFor(now time.Time) time.Duration {
	if u.LockedUntil == nil || !now.Before(*u.LockedUntil) {
		return 0
	}
	return u.LockedUntil.Sub(now)
}
