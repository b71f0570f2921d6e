package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "schoolportal_backend/internals/features/users/auth/model"
)

/* ====================== USER ====================== */

func FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.WithContext(ctx).Where("user_name = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID int64) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *gorm.DB, user *authModel.UserModel) error {
	return db.WithContext(ctx).Create(user).Error
}

func ListUsers(ctx context.Context, db *gorm.DB, role string) ([]authModel.UserModel, error) {
	var users []authModel.UserModel
	q := db.WithContext(ctx).Order("user_name ASC")
	if role != "" {
		q = q.Where("user_role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserActive returns the number of rows touched; zero means no such user.
func SetUserActive(ctx context.Context, db *gorm.DB, userID int64, active bool) (int64, error) {
	res := db.WithContext(ctx).Model(&authModel.UserModel{}).
		Where("user_id = ?", userID).
		Update("user_is_active", active)
	return res.RowsAffected, res.Error
}

func ParentExists(ctx context.Context, db *gorm.DB, parentID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Table("parents").Where("parent_id = ?", parentID).Count(&n).Error
	return n > 0, err
}

/* ====================== BLACKLIST TOKEN ====================== */

// BlacklistToken is idempotent: a token already listed is left as is.
func BlacklistToken(ctx context.Context, db *gorm.DB, token string, expiresAt time.Time) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(&authModel.TokenBlacklist{Token: token, ExpiredAt: expiresAt.UTC()}).Error
}

func IsBlacklisted(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&authModel.TokenBlacklist{}).Where("token = ?", token).Count(&n).Error
	return n > 0, err
}

func CleanupExpiredBlacklist(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM token_blacklist WHERE expired_at <= ?`, now.UTC())
	return res.RowsAffected, res.Error
}
