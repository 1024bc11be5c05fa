package service

import (
	"context"
	"testing"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserServices(t *testing.T) (*AuthService, *UserService, *jwt.Manager) {
	t.Helper()
	db := setupTestDB(t)
	repo := repository.NewUserRepository(db)
	manager := jwt.NewManager("test-secret", 3600)
	return NewAuthService(repo, manager), NewUserService(repo), manager
}

func TestAuthService_Login(t *testing.T) {
	auth, users, manager := setupUserServices(t)
	ctx := context.Background()

	_, err := users.Create(ctx, adminActor, &domain.CreateUserRequest{
		EmployeeID: "E100", Name: "박민수", Dept: "개발팀", Password: "pass1234",
	})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := auth.Login(ctx, "E100", "pass1234")
		require.NoError(t, err)
		assert.Equal(t, "E100", resp.User.EmployeeID)

		claims, err := manager.VerifyToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "E100", claims.EmployeeID)
		assert.Equal(t, domain.RoleUser, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, "E100", "nope")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := auth.Login(ctx, "E404", "pass1234")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("inactive", func(t *testing.T) {
		require.NoError(t, users.UpdateStatus(ctx, adminActor, "E100", domain.UserStatusInactive))
		_, err := auth.Login(ctx, "E100", "pass1234")
		assert.ErrorIs(t, err, common.ErrInactiveUser)
	})
}

func TestAuthService_Me(t *testing.T) {
	auth, _, _ := setupUserServices(t)

	u, err := auth.Me(context.Background(), userActor)
	require.NoError(t, err)
	assert.Equal(t, "인사팀", u.Dept)

	_, err = auth.Me(context.Background(), &domain.Actor{EmployeeID: "gone"})
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestUserService(t *testing.T) {
	_, users, _ := setupUserServices(t)
	ctx := context.Background()

	t.Run("non-admin rejected", func(t *testing.T) {
		_, _, err := users.List(ctx, userActor, 1, 20, "")
		assert.ErrorIs(t, err, common.ErrForbidden)
		_, err = users.Create(ctx, userActor, &domain.CreateUserRequest{EmployeeID: "X", Password: "1234"})
		assert.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := users.Create(ctx, adminActor, &domain.CreateUserRequest{EmployeeID: "E001", Name: "중복", Password: "1234"})
		assert.ErrorIs(t, err, common.ErrUserAlreadyExists)
	})

	t.Run("list admins first with search", func(t *testing.T) {
		list, total, err := users.List(ctx, adminActor, 0, 0, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, "A001", list[0].EmployeeID)

		found, total, err := users.List(ctx, adminActor, 1, 20, "재무")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "E002", found[0].EmployeeID)
	})

	t.Run("role toggle", func(t *testing.T) {
		require.NoError(t, users.UpdateRole(ctx, adminActor, "E002", domain.RoleAdmin))
		assert.True(t, common.IsValidation(users.UpdateRole(ctx, adminActor, "A001", domain.RoleUser)))
		assert.True(t, common.IsValidation(users.UpdateRole(ctx, adminActor, "E002", "owner")))
		assert.ErrorIs(t, users.UpdateRole(ctx, adminActor, "E404", domain.RoleUser), common.ErrUserNotFound)
	})

	t.Run("status toggle", func(t *testing.T) {
		assert.True(t, common.IsValidation(users.UpdateStatus(ctx, adminActor, "A001", domain.UserStatusInactive)))
		assert.ErrorIs(t, users.UpdateStatus(ctx, adminActor, "E404", domain.UserStatusActive), common.ErrUserNotFound)
	})
}
