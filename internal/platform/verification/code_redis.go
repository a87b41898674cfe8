// Package verification holds the Redis-backed verification code store.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vivimap/internal/feature/auth/domain/entity"
	"vivimap/internal/feature/auth/usecase"
)

// CodeRedis implements usecase.VerificationCodeStore with one key per email.
// Expiry is delegated to the key TTL.
type CodeRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.VerificationCodeStore = (*CodeRedis)(nil)

func NewCodeRedis(client *redis.Client, prefix string) *CodeRedis {
	return &CodeRedis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *CodeRedis) key(email string) string {
	return fmt.Sprintf("%s:%s", r.prefix, email)
}

// Replace overwrites the code stored for code.Email.
func (r *CodeRedis) Replace(ctx context.Context, code *entity.VerificationCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to marshal verification code: %w", err)
	}

	ttl := code.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("verification code already expired")
	}

	return r.client.Set(ctx, r.key(code.Email), data, ttl).Err()
}

func (r *CodeRedis) Find(ctx context.Context, email, code string) (*entity.VerificationCode, error) {
	data, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrCodeNotFound
		}
		return nil, err
	}

	var vc entity.VerificationCode
	if err := json.Unmarshal(data, &vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification code: %w", err)
	}
	if vc.Code != code {
		return nil, usecase.ErrCodeNotFound
	}
	return &vc, nil
}

func (r *CodeRedis) DeleteByEmail(ctx context.Context, email string) error {
	return r.client.Del(ctx, r.key(email)).Err()
}
