package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vivimap/internal/feature/auth/domain/entity"
	"vivimap/internal/feature/auth/usecase"
)

func code(id, email, value string, expiresAt time.Time) *entity.VerificationCode {
	return &entity.VerificationCode{
		ID:        id,
		Email:     email,
		Code:      value,
		ExpiresAt: expiresAt,
		CreatedAt: expiresAt.Add(-entity.VerificationCodeTTL),
	}
}

func TestVerificationCodeGorm_ReplaceKeepsOneCodePerEmail(t *testing.T) {
	db := setupTestDB(t)
	store := NewVerificationCodeGorm(db)
	ctx := context.Background()
	expires := time.Now().Add(5 * time.Minute)

	require.NoError(t, store.Replace(ctx, code("c1", "a@gmail.com", "11111", expires)))
	require.NoError(t, store.Replace(ctx, code("c2", "b@gmail.com", "22222", expires)))
	require.NoError(t, store.Replace(ctx, code("c3", "a@gmail.com", "33333", expires)))

	_, err := store.Find(ctx, "a@gmail.com", "11111")
	assert.ErrorIs(t, err, usecase.ErrCodeNotFound, "previous code is replaced")

	got, err := store.Find(ctx, "a@gmail.com", "33333")
	require.NoError(t, err)
	assert.Equal(t, "c3", got.ID)
	assert.WithinDuration(t, expires, got.ExpiresAt, time.Second)

	_, err = store.Find(ctx, "b@gmail.com", "22222")
	assert.NoError(t, err, "other emails are untouched")

	var count int64
	require.NoError(t, db.Model(&VerificationCodeModel{}).Where("email = ?", "a@gmail.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerificationCodeGorm_ReplacePurgesExpired(t *testing.T) {
	db := setupTestDB(t)
	store := NewVerificationCodeGorm(db)
	ctx := context.Background()

	require.NoError(t, db.Create(VerificationCodeModelFromEntity(code("old", "b@gmail.com", "44444", time.Now().Add(-time.Minute)))).Error)
	require.NoError(t, store.Replace(ctx, code("new", "a@gmail.com", "55555", time.Now().Add(5*time.Minute))))

	var count int64
	require.NoError(t, db.Model(&VerificationCodeModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerificationCodeGorm_FindIsExact(t *testing.T) {
	store := NewVerificationCodeGorm(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, code("c1", "a@gmail.com", "12345", time.Now().Add(time.Minute))))

	_, err := store.Find(ctx, "a@gmail.com", "12346")
	assert.ErrorIs(t, err, usecase.ErrCodeNotFound)
	_, err = store.Find(ctx, "b@gmail.com", "12345")
	assert.ErrorIs(t, err, usecase.ErrCodeNotFound)
}

func TestVerificationCodeGorm_DeleteByEmail(t *testing.T) {
	store := NewVerificationCodeGorm(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, code("c1", "a@gmail.com", "12345", time.Now().Add(time.Minute))))

	require.NoError(t, store.DeleteByEmail(ctx, "a@gmail.com"))
	_, err := store.Find(ctx, "a@gmail.com", "12345")
	assert.ErrorIs(t, err, usecase.ErrCodeNotFound)

	assert.NoError(t, store.DeleteByEmail(ctx, "nobody@gmail.com"))
}

func TestVerificationCodeGorm_PurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	store := NewVerificationCodeGorm(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.Create(VerificationCodeModelFromEntity(code("old1", "a@gmail.com", "11111", now.Add(-time.Minute)))).Error)
	require.NoError(t, db.Create(VerificationCodeModelFromEntity(code("old2", "b@gmail.com", "22222", now.Add(-time.Hour)))).Error)
	require.NoError(t, db.Create(VerificationCodeModelFromEntity(code("live", "c@gmail.com", "33333", now.Add(time.Minute)))).Error)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Find(ctx, "c@gmail.com", "33333")
	assert.NoError(t, err)
}
