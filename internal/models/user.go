package models

import "gorm.io/gorm"

// DefaultDailyTradeLimit applies when a user has not configured a limit.
const DefaultDailyTradeLimit = 10

// User is a registered journal owner.
type User struct {
	gorm.Model
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string `gorm:"not null" json:"-"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	AvatarURL        string `json:"avatarUrl"`
	Role             string `gorm:"default:Trader" json:"role"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	DailyTradeLimit  int    `gorm:"default:10" json:"dailyTradeLimit"`
}

// TradeLimit returns the configured daily trade limit, falling back to the
// default when unset.
func (u *User) TradeLimit() int {
	if u.DailyTradeLimit <= 0 {
		return DefaultDailyTradeLimit
	}
	return u.DailyTradeLimit
}
