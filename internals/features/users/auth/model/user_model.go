package model

import "time"

type UserModel struct {
	UserID           int64     `gorm:"column:user_id;primaryKey;autoIncrement" json:"userId"`
	UserName         string    `gorm:"column:user_name;type:varchar(60);not null;uniqueIndex:uq_users_name" json:"userName"`
	UserPasswordHash string    `gorm:"column:user_password_hash;type:varchar(100);not null" json:"-"`
	UserRole         string    `gorm:"column:user_role;type:varchar(20);not null" json:"role"`
	UserParentID     *int64    `gorm:"column:user_parent_id;index:ix_users_parent" json:"parentId,omitempty"`
	UserIsActive     bool      `gorm:"column:user_is_active;not null" json:"isActive"`
	CreatedAt        time.Time `gorm:"column:user_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (UserModel) TableName() string { return "users" }
