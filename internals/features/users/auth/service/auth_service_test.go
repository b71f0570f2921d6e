package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolportal_backend/internals/databases/dbtest"
	directoryModel "schoolportal_backend/internals/features/school/directory/model"
	"schoolportal_backend/internals/features/users/auth/dto"
	authModel "schoolportal_backend/internals/features/users/auth/model"
	"schoolportal_backend/internals/helpers/apperr"
)

func newAuth(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	return NewAuthService(db, NewTokenService("test-secret", time.Hour), zap.NewNop()), db
}

func fiberStatus(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "want *fiber.Error, got %v", err)
	return fe.Code
}

func TestLogin(t *testing.T) {
	svc, db := newAuth(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "admin", Password: "change-me-now", Role: "admin"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, dto.LoginRequest{Username: " admin ", Password: "change-me-now"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, "admin", res.User.Role)

	claims, err := svc.Tokens().Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.UserID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Nil(t, claims.ParentID)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, fiberStatus(t, err))

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "change-me-now"})
	assert.Equal(t, fiber.StatusUnauthorized, fiberStatus(t, err))

	require.NoError(t, db.Model(&authModel.UserModel{}).Where("user_name = ?", "admin").
		Update("user_is_active", false).Error)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "change-me-now"})
	assert.Equal(t, fiber.StatusForbidden, fiberStatus(t, err))

	active, err := svc.ActiveUser(ctx, res.User.UserID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "profe", Password: "password-123", Role: "teacher"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, dto.LoginRequest{Username: "profe", Password: "password-123"})
	require.NoError(t, err)

	listed, err := svc.Blacklisted(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.False(t, listed)

	require.NoError(t, svc.Logout(ctx, res.AccessToken))
	require.NoError(t, svc.Logout(ctx, res.AccessToken), "second logout is a no-op")

	listed, err = svc.Blacklisted(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, listed)

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestCreateUserRules(t *testing.T) {
	svc, db := newAuth(t)
	ctx := context.Background()

	parent := directoryModel.ParentModel{ParentFullName: "Ana Torres"}
	require.NoError(t, db.Create(&parent).Error)

	cases := []struct {
		name  string
		req   dto.CreateUserRequest
		field string
	}{
		{"blank username", dto.CreateUserRequest{Username: "  ", Password: "password-123", Role: "admin"}, "username"},
		{"unknown role", dto.CreateUserRequest{Username: "x", Password: "password-123", Role: "root"}, "role"},
		{"short password", dto.CreateUserRequest{Username: "x", Password: "short", Role: "admin"}, "password"},
		{"parent without link", dto.CreateUserRequest{Username: "x", Password: "password-123", Role: "parent"}, "parentId"},
		{"parent link missing", dto.CreateUserRequest{Username: "x", Password: "password-123", Role: "parent", ParentID: ptr(int64(999))}, "parentId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tc.req)
			ae := apperr.From(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Contains(t, ae.Fields, tc.field)
		})
	}

	u, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "password-123", Role: "parent", ParentID: &parent.ParentID})
	require.NoError(t, err)
	require.NotNil(t, u.UserParentID)
	assert.Equal(t, parent.ParentID, *u.UserParentID)
	assert.NotEqual(t, "password-123", u.UserPasswordHash)

	res, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "password-123"})
	require.NoError(t, err)
	claims, err := svc.Tokens().Parse(res.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.ParentID)
	assert.Equal(t, parent.ParentID, *claims.ParentID)

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "password-456", Role: "teacher"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestMe(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "admin", Password: "change-me-now", Role: "admin"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "admin", me.Username)

	_, err = svc.Me(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTokenService(t *testing.T) {
	ts := NewTokenService("test-secret", time.Minute)
	user := authModel.UserModel{UserID: 7, UserRole: "teacher"}

	raw, exp, err := ts.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	_, err = NewTokenService("other-secret", time.Minute).Parse(raw)
	assert.Error(t, err, "signature from another secret")

	ts.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := ts.Issue(user)
	require.NoError(t, err)
	_, err = NewTokenService("test-secret", time.Minute).Parse(stale)
	assert.Error(t, err, "expired token")

	_, _, err = NewTokenService("", time.Minute).Issue(user)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password-123")
	require.NoError(t, err)
	assert.NoError(t, CheckPasswordHash(hash, "password-123"))
	assert.Error(t, CheckPasswordHash(hash, "password-124"))
}

func ptr[T any](v T) *T { return &v }

func TestListUsersAndSetActive(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	admin, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "admin", Password: "change-me-now", Role: "admin"})
	require.NoError(t, err)
	teacher, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "beto", Password: "password-123", Role: "teacher"})
	require.NoError(t, err)

	all, err := svc.ListUsers(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "admin", all[0].Username)
	assert.True(t, all[1].IsActive)

	teachers, err := svc.ListUsers(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, teachers, 1)

	_, err = svc.ListUsers(ctx, "root")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.SetActive(ctx, admin.UserID, teacher.UserID, false))
	active, err := svc.ActiveUser(ctx, teacher.UserID)
	require.NoError(t, err)
	assert.False(t, active)

	assert.True(t, apperr.Is(svc.SetActive(ctx, admin.UserID, admin.UserID, false), apperr.KindConflict))
	assert.True(t, apperr.Is(svc.SetActive(ctx, admin.UserID, 999, true), apperr.KindNotFound))
}
