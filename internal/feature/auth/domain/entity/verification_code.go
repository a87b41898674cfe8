package entity

import "time"

// VerificationCodeTTL is how long an issued code stays matchable.
const VerificationCodeTTL = 5 * time.Minute

// VerificationCode is a 5-digit code proving ownership of an email address.
type VerificationCode struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the code can no longer be matched at now.
func (v *VerificationCode) IsExpired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// PendingVerification is a freshly issued code whose email still has to be sent.
type PendingVerification struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}
