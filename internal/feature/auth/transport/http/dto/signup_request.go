package dto

// SignupReq is validated by the usecase so every failure gets a specific message.
type SignupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}
