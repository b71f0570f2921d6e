package model

import "time"

// TokenBlacklist holds logged-out access tokens until they expire.
type TokenBlacklist struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"column:token;type:text;not null;uniqueIndex:uq_token_blacklist_token" json:"token"`
	ExpiredAt time.Time `gorm:"column:expired_at;not null;index:ix_token_blacklist_expired" json:"expiredAt"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
