// Package di provides factories that pick an implementation per configured infrastructure.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "vivimap/internal/feature/auth/adapters"
	authusecase "vivimap/internal/feature/auth/usecase"
	"vivimap/internal/platform/verification"
)

// NewVerificationCodeStore returns a Redis-backed store when Redis is
// available and falls back to the SQL table otherwise.
func NewVerificationCodeStore(rdb *redis.Client, db *gorm.DB) authusecase.VerificationCodeStore {
	if rdb != nil {
		return verification.NewCodeRedis(rdb, "verification")
	}
	return authadapters.NewVerificationCodeGorm(db)
}
