package users

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"schoolportal_backend/internals/features/users/auth/dto"
	authService "schoolportal_backend/internals/features/users/auth/service"
	"schoolportal_backend/internals/helpers/apperr"
)

type UserSeed struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ParentID *int64 `json:"parentId"`
}

// SeedUsers creates the accounts; existing usernames are skipped.
func SeedUsers(ctx context.Context, svc *authService.AuthService, raw []byte, log *zap.Logger) error {
	var inputs []UserSeed
	if err := sonic.Unmarshal(raw, &inputs); err != nil {
		return pkgerrors.Wrap(err, "decode user seed")
	}

	for _, in := range inputs {
		_, err := svc.CreateUser(ctx, dto.CreateUserRequest{
			Username: in.Username,
			Password: in.Password,
			Role:     in.Role,
			ParentID: in.ParentID,
		})
		var ae *apperr.Error
		switch {
		case err == nil:
			log.Info("user seeded", zap.String("username", in.Username))
		case errors.As(err, &ae) && ae.Kind == apperr.KindConflict:
			log.Debug("user exists, skipped", zap.String("username", in.Username))
		default:
			return pkgerrors.Wrapf(err, "seed user %q", in.Username)
		}
	}
	return nil
}
