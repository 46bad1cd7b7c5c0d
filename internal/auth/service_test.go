package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/entities"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}))

	cfg := config.Auth{
		Mode:             config.AuthModeLocal,
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 3,
		LockoutDuration:  30 * time.Minute,
		TokenExpiry:      time.Hour,
	}
	return NewService(db, cfg)
}

func TestService_CreateUser(t *testing.T) {
	t.Run("creates a valid user", func(t *testing.T) {
		svc := setupTestService(t)

		user, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleAdmin)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, entities.UserRoleAdmin, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "a-long-enough-password", user.PasswordHash)
	})

	t.Run("rejects duplicate username or email", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		_, err = svc.CreateUser("alice", "other@example.com", "a-long-enough-password", entities.UserRoleEditor)
		assert.ErrorIs(t, err, ErrUserExists)

		_, err = svc.CreateUser("bob", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("validates inputs", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.CreateUser("", "a@b.co", "a-long-enough-password", entities.UserRoleEditor)
		assert.ErrorIs(t, err, ErrUsernameRequired)

		_, err = svc.CreateUser("ab", "a@b.co", "a-long-enough-password", entities.UserRoleEditor)
		assert.ErrorIs(t, err, ErrUsernameInvalid)

		_, err = svc.CreateUser("alice", "not-an-email", "a-long-enough-password", entities.UserRoleEditor)
		assert.ErrorIs(t, err, ErrEmailInvalid)

		_, err = svc.CreateUser("alice", "a@b.co", "a-long-enough-password", "superuser")
		assert.ErrorIs(t, err, ErrInvalidRole)

		_, err = svc.CreateUser("alice", "a@b.co", "short", entities.UserRoleEditor)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestService_Authenticate(t *testing.T) {
	t.Run("accepts correct credentials", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		user, err := svc.Authenticate("alice", "a-long-enough-password")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("accepts email as login", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		_, err = svc.Authenticate("alice@example.com", "a-long-enough-password")
		require.NoError(t, err)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		_, err = svc.Authenticate("alice", "not-the-password")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("locks the account after repeated failures", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = svc.Authenticate("alice", "not-the-password")
			assert.Error(t, err)
		}

		// Even the correct password is rejected while locked
		_, err = svc.Authenticate("alice", "a-long-enough-password")
		assert.ErrorIs(t, err, ErrAccountLocked)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.Authenticate("ghost", "a-long-enough-password")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_Tokens(t *testing.T) {
	t.Run("generate and validate", func(t *testing.T) {
		svc := setupTestService(t)

		user, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		token, err := svc.GenerateToken(user.ID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		found, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("revoked token is invalid", func(t *testing.T) {
		svc := setupTestService(t)

		user, err := svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleEditor)
		require.NoError(t, err)

		token, err := svc.GenerateToken(user.ID)
		require.NoError(t, err)

		require.NoError(t, svc.RevokeToken(user.ID))
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token is invalid", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.ValidateToken("")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = svc.ValidateToken("deadbeef")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token for unknown user", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.GenerateToken(42)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_HasUsers(t *testing.T) {
	svc := setupTestService(t)

	has, err := svc.HasUsers()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.CreateUser("alice", "alice@example.com", "a-long-enough-password", entities.UserRoleAdmin)
	require.NoError(t, err)

	has, err = svc.HasUsers()
	require.NoError(t, err)
	assert.True(t, has)
}
