// Package dto defines the request and response bodies of the auth endpoints.
package dto

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendVerificationReq struct {
	Email string `json:"email"`
}
