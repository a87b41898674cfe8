package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"vivimap/internal/feature/auth/domain/entity"
	"vivimap/internal/feature/auth/usecase"
)

// verificationCodeGorm stores codes in SQL. Expired rows are purged whenever
// a new code is issued.
type verificationCodeGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.VerificationCodeStore = (*verificationCodeGorm)(nil)

func NewVerificationCodeGorm(db *gorm.DB) *verificationCodeGorm {
	return &verificationCodeGorm{db: db, now: time.Now}
}

// Replace deletes every row for the email, plus all expired rows, and inserts
// the new code in one transaction.
func (r *verificationCodeGorm) Replace(ctx context.Context, code *entity.VerificationCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? OR expires_at <= ?", code.Email, r.now()).
			Delete(&VerificationCodeModel{}).Error; err != nil {
			return err
		}
		return tx.Create(VerificationCodeModelFromEntity(code)).Error
	})
}

func (r *verificationCodeGorm) Find(ctx context.Context, email, code string) (*entity.VerificationCode, error) {
	var m VerificationCodeModel
	if err := r.db.WithContext(ctx).
		Where("email = ? AND code = ?", email, code).
		Order("created_at DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCodeNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

func (r *verificationCodeGorm) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&VerificationCodeModel{}).Error
}

// PurgeExpired deletes every expired code and returns how many were removed.
func (r *verificationCodeGorm) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", r.now()).Delete(&VerificationCodeModel{})
	return res.RowsAffected, res.Error
}
