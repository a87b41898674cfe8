package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vivimap/internal/feature/auth/domain/entity"
	"vivimap/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entity.User{}, &VerificationCodeModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func newUser(id, email, username string) *entity.User {
	return &entity.User{
		ID:       id,
		Email:    email,
		Password: "hashed_password",
		FullName: "Jane Doe",
		Username: username,
	}
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user := newUser("u1", "a@gmail.com", "janed")
		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.False(t, user.EmailVerified)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		require.NoError(t, repo.Create(context.Background(), newUser("u1", "a@gmail.com", "janed")))

		err := repo.Create(context.Background(), newUser("u2", "a@gmail.com", "other"))
		assert.ErrorIs(t, err, usecase.ErrEmailOrUsernameTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		require.NoError(t, repo.Create(context.Background(), newUser("u1", "a@gmail.com", "janed")))

		err := repo.Create(context.Background(), newUser("u2", "b@gmail.com", "janed"))
		assert.ErrorIs(t, err, usecase.ErrEmailOrUsernameTaken)
	})
}

func TestUserGorm_Find(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@gmail.com", "janed")))

	tests := []struct {
		name    string
		find    func() (*entity.User, error)
		wantErr error
	}{
		{"by email", func() (*entity.User, error) { return repo.FindByEmail(ctx, "a@gmail.com") }, nil},
		{"by username", func() (*entity.User, error) { return repo.FindByUsername(ctx, "janed") }, nil},
		{"by id", func() (*entity.User, error) { return repo.FindByID(ctx, "u1") }, nil},
		{"unknown email", func() (*entity.User, error) { return repo.FindByEmail(ctx, "b@gmail.com") }, usecase.ErrUserNotFound},
		{"unknown username", func() (*entity.User, error) { return repo.FindByUsername(ctx, "nobody") }, usecase.ErrUserNotFound},
		{"unknown id", func() (*entity.User, error) { return repo.FindByID(ctx, "u2") }, usecase.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.find()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", u.ID)
			assert.Equal(t, "janed", u.Username)
		})
	}
}

func TestUserGorm_MarkEmailVerified(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@gmail.com", "janed")))

	require.NoError(t, repo.MarkEmailVerified(ctx, "u1"))
	u, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	assert.ErrorIs(t, repo.MarkEmailVerified(ctx, "missing"), usecase.ErrUserNotFound)
}

func TestUserGorm_FindUsernames(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@gmail.com", "janed")))
	require.NoError(t, repo.Create(ctx, newUser("u2", "b@gmail.com", "bob_b")))

	got, err := repo.FindUsernames(ctx, []string{"u1", "u2", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "janed", "u2": "bob_b"}, got)

	empty, err := repo.FindUsernames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"mysql 1062", &mysql.MySQLError{Number: 1062}, true},
		{"mysql other", &mysql.MySQLError{Number: 1045}, false},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"wrapped", errors.Join(errors.New("insert"), gorm.ErrDuplicatedKey), true},
		{"unrelated", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}
