package adapters

import (
	"time"

	"vivimap/internal/feature/auth/domain/entity"
)

// VerificationCodeModel is the gorm model for the verification_codes table.
type VerificationCodeModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"index;size:255;not null"`
	Code      string    `gorm:"size:5;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (VerificationCodeModel) TableName() string {
	return "verification_codes"
}

func (m *VerificationCodeModel) ToEntity() *entity.VerificationCode {
	return &entity.VerificationCode{
		ID:        m.ID,
		Email:     m.Email,
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

func VerificationCodeModelFromEntity(v *entity.VerificationCode) *VerificationCodeModel {
	return &VerificationCodeModel{
		ID:        v.ID,
		Email:     v.Email,
		Code:      v.Code,
		ExpiresAt: v.ExpiresAt,
		CreatedAt: v.CreatedAt,
	}
}
