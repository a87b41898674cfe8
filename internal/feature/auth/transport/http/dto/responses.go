package dto

import "vivimap/internal/feature/auth/domain/entity"

type MessageRes struct {
	Message string `json:"message"`
}

// UserRes is the public view of a user; it never includes the password hash.
type UserRes struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

type UserEnvelope struct {
	User UserRes `json:"user"`
}

type VerificationRequiredRes struct {
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requiresVerification"`
	Email                string `json:"email"`
}

func NewUserEnvelope(u *entity.User) UserEnvelope {
	return UserEnvelope{User: UserRes{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Username: u.Username,
	}}
}
