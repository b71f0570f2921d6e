package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolportal_backend/internals/constants"
	"schoolportal_backend/internals/features/users/auth/dto"
	authModel "schoolportal_backend/internals/features/users/auth/model"
	authRepo "schoolportal_backend/internals/features/users/auth/repository"
	"schoolportal_backend/internals/helpers/apperr"
)

var errBadCredentials = fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")

type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	log    *zap.Logger
}

func NewAuthService(db *gorm.DB, tokens *TokenService, log *zap.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, log: log.Named("auth")}
}

func (s *AuthService) Tokens() *TokenService { return s.tokens }

/* ==========================
   LOGIN
========================== */

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	user, err := authRepo.FindUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := CheckPasswordHash(user.UserPasswordHash, req.Password); err != nil {
		s.log.Info("login rejected", zap.String("username", username))
		return nil, errBadCredentials
	}
	if !user.UserIsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "account is disabled")
	}

	token, exp, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, err
	}
	s.log.Info("login", zap.Int64("user_id", user.UserID), zap.String("role", user.UserRole))
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        dto.FromUser(*user),
	}, nil
}

/* ==========================
   LOGOUT
========================== */

// Logout blacklists the access token until it would have expired anyway.
// An empty or unparsable token is a no-op.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		s.log.Debug("logout with invalid token", zap.Error(err))
		return nil
	}
	exp := time.Now().Add(s.tokens.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := authRepo.BlacklistToken(ctx, s.db, rawToken, exp); err != nil {
		return err
	}
	s.log.Info("logout", zap.Int64("user_id", claims.UserID))
	return nil
}

// Blacklisted reports whether the token was logged out.
func (s *AuthService) Blacklisted(ctx context.Context, rawToken string) (bool, error) {
	return authRepo.IsBlacklisted(ctx, s.db, rawToken)
}

/* ==========================
   USERS
========================== */

func (s *AuthService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*authModel.UserModel, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.ValidationFields("validation failed", map[string]string{"username": "username is a required field"})
	}
	if !constants.ValidRole(req.Role) {
		return nil, apperr.ValidationFields("validation failed", map[string]string{"role": "role must be one of admin teacher parent"})
	}
	if len(req.Password) < 8 {
		return nil, apperr.ValidationFields("validation failed", map[string]string{"password": "password must be at least 8 characters"})
	}

	var parentID *int64
	if req.Role == constants.RoleParent {
		if req.ParentID == nil || *req.ParentID <= 0 {
			return nil, apperr.ValidationFields("validation failed", map[string]string{"parentId": "parentId is required for parent accounts"})
		}
		ok, err := authRepo.ParentExists(ctx, s.db, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.ValidationFields("validation failed", map[string]string{"parentId": "parent does not exist"})
		}
		parentID = req.ParentID
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &authModel.UserModel{
		UserName:         username,
		UserPasswordHash: hash,
		UserRole:         req.Role,
		UserParentID:     parentID,
		UserIsActive:     true,
	}
	if err := authRepo.CreateUser(ctx, s.db, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("username already exists")
		}
		return nil, err
	}
	s.log.Info("user created", zap.Int64("user_id", user.UserID), zap.String("role", user.UserRole))
	return user, nil
}

// ListUsers returns accounts ordered by username, optionally for one role.
func (s *AuthService) ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	if role != "" && !constants.ValidRole(role) {
		return nil, apperr.ValidationFields("validation failed", map[string]string{"role": "role must be one of admin teacher parent"})
	}
	users, err := authRepo.ListUsers(ctx, s.db, role)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.FromUser(u))
	}
	return out, nil
}

// SetActive enables or disables an account. Disabled accounts fail login and
// their outstanding tokens are refused by the auth middleware.
func (s *AuthService) SetActive(ctx context.Context, actorID, userID int64, active bool) error {
	if !active && actorID == userID {
		return apperr.Conflict("you cannot disable your own account")
	}
	n, err := authRepo.SetUserActive(ctx, s.db, userID, active)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user not found")
	}
	s.log.Info("user active flag changed", zap.Int64("user_id", userID), zap.Bool("active", active), zap.Int64("by", actorID))
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := authRepo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	res := dto.FromUser(*user)
	return &res, nil
}

// ActiveUser loads the user and reports whether it may still use its tokens.
func (s *AuthService) ActiveUser(ctx context.Context, userID int64) (bool, error) {
	user, err := authRepo.FindUserByID(ctx, s.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.UserIsActive, nil
}
