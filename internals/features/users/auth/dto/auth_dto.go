package dto

import (
	"time"

	authModel "schoolportal_backend/internals/features/users/auth/model"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=60"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin teacher parent"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

type UserResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ParentID *int64 `json:"parentId,omitempty"`
	IsActive bool   `json:"isActive"`
}

func FromUser(u authModel.UserModel) UserResponse {
	return UserResponse{
		UserID:   u.UserID,
		Username: u.UserName,
		Role:     u.UserRole,
		ParentID: u.UserParentID,
		IsActive: u.UserIsActive,
	}
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}
