package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vivimap/internal/feature/auth/domain/entity"
	jwtmw "vivimap/internal/platform/jwt"
)

// dummyHash keeps login timing uniform when the email is unknown.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for users.
// Lookups are exact; callers pass lowercase email and username.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
}

// VerificationCodeStore keeps at most one active code per email.
type VerificationCodeStore interface {
	// Replace removes every code for code.Email and stores code.
	Replace(ctx context.Context, code *entity.VerificationCode) error
	// Find returns the code row matching email and code exactly, or ErrCodeNotFound.
	Find(ctx context.Context, email, code string) (*entity.VerificationCode, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// TokenGenerator issues session tokens.
type TokenGenerator interface {
	GenerateToken(user jwtmw.UserClaims) (string, error)
}

// SignupInput is the raw registration form; Signup trims and validates it.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Username string
}

// AuthResult is a logged-in user with a freshly signed session token.
type AuthResult struct {
	User  *entity.User
	Token string
}

// LoginResult is either an AuthResult or, for unverified accounts, a new
// pending verification and no token.
type LoginResult struct {
	AuthResult
	Pending *entity.PendingVerification
}

// RequiresVerification reports whether login stopped at the verification step.
func (r *LoginResult) RequiresVerification() bool { return r.Pending != nil }

type authUsecase struct {
	users  UserRepository
	codes  VerificationCodeStore
	tokens TokenGenerator

	cost    int
	now     func() time.Time
	newCode func() (string, error)
}

// NewAuthUsecase creates the auth flow controller.
func NewAuthUsecase(users UserRepository, codes VerificationCodeStore, tokens TokenGenerator) *authUsecase {
	return &authUsecase{
		users:   users,
		codes:   codes,
		tokens:  tokens,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		newCode: generateCode,
	}
}

// generateCode returns a uniformly random code in 10000-99999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+10000, 10), nil
}

// ToClaims maps a user onto the public token payload.
func ToClaims(u *entity.User) jwtmw.UserClaims {
	return jwtmw.UserClaims{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Username: u.Username,
	}
}

// Signup validates the input, creates an unverified user and issues the first
// verification code. The caller delivers the returned code.
func (u *authUsecase) Signup(ctx context.Context, in SignupInput) (*entity.PendingVerification, error) {
	email := NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	username := strings.TrimSpace(in.Username)

	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password, passwordPolicyEmail(email)); err != nil {
		return nil, err
	}
	if err := ValidateFullName(fullName); err != nil {
		return nil, err
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	username = strings.ToLower(username)

	if taken, err := u.identityTaken(ctx, email, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailOrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: string(hashed),
		FullName: fullName,
		Username: username,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.issueCode(ctx, email)
}

// passwordPolicyEmail drops local parts too short to be meaningful in the
// "password contains email" rule; a one-letter local part matches nearly
// every password.
func passwordPolicyEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if len(local) < minLocalPartLength {
		return ""
	}
	return email
}

func (u *authUsecase) identityTaken(ctx context.Context, email, username string) (bool, error) {
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}
	return false, nil
}

// issueCode replaces every code for email with a new one.
func (u *authUsecase) issueCode(ctx context.Context, email string) (*entity.PendingVerification, error) {
	code, err := u.newCode()
	if err != nil {
		return nil, err
	}
	now := u.now()
	vc := &entity.VerificationCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(entity.VerificationCodeTTL),
		CreatedAt: now,
	}
	if err := u.codes.Replace(ctx, vc); err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}
	return &entity.PendingVerification{Email: email, Code: code, ExpiresAt: vc.ExpiresAt}, nil
}

// VerifyEmail consumes a matching unexpired code, marks the user verified and
// signs them in. Any mismatch leaves the user untouched.
func (u *authUsecase) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if !ValidVerificationCode(code) {
		return nil, ErrInvalidOrExpiredCode
	}

	vc, err := u.codes.Find(ctx, email, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}
	if vc.IsExpired(u.now()) {
		return nil, ErrInvalidOrExpiredCode
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}

	if !user.EmailVerified {
		if err := u.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, err
		}
		user.EmailVerified = true
	}
	if err := u.codes.DeleteByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("delete verification code: %w", err)
	}

	return u.signIn(user)
}

// Login authenticates a user. The bcrypt comparison always runs so unknown
// emails and wrong passwords take the same time.
func (u *authUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		pending, err := u.issueCode(ctx, email)
		if err != nil {
			return nil, err
		}
		return &LoginResult{AuthResult: AuthResult{User: user}, Pending: pending}, nil
	}

	res, err := u.signIn(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AuthResult: *res}, nil
}

// ResendVerification issues a new code for an unverified account.
func (u *authUsecase) ResendVerification(ctx context.Context, email string) (*entity.PendingVerification, error) {
	email = NormalizeEmail(email)

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return nil, ErrAlreadyVerified
	}
	return u.issueCode(ctx, email)
}

// Session reloads the user behind a valid token.
func (u *authUsecase) Session(ctx context.Context, userID string) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

func (u *authUsecase) signIn(user *entity.User) (*AuthResult, error) {
	token, err := u.tokens.GenerateToken(ToClaims(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
