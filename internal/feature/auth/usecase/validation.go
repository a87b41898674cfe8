package usecase

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength  = 8
	minFullNameLength  = 3
	maxFullNameLength  = 50
	minUsernameLength  = 3
	maxUsernameLength  = 20
	minLocalPartLength = 3
)

var (
	allowedEmailDomains = []string{
		"gmail.com", "yahoo.com", "outlook.com", "hotmail.com", "icloud.com", "aol.com",
		"mail.com", "protonmail.com", "live.com", "msn.com", "yandex.com", "zoho.com", "gmx.com", "me.com",
	}
	blockedEmailDomains = []string{
		"mailinator.com", "temp-mail.org", "10minutemail.com", "guerrillamail.com",
	}
	commonPasswords = []string{
		"123456", "password", "12345678", "qwerty", "123456789", "1234", "111111", "admin", "123123", "secret",
	}

	fullNamePattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	codePattern     = regexp.MustCompile(`^\d{5}$`)
	validate        = validator.New()
	hasDigit        = regexp.MustCompile(`\d`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
)

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address shape and the provider allow/block lists.
func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return invalid("Please enter a valid email address.")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return invalid("Please enter a valid email address.")
	}

	domain := strings.ToLower(email[at+1:])
	if slices.Contains(blockedEmailDomains, domain) {
		return invalid("Temporary email addresses are not allowed.")
	}
	if !slices.Contains(allowedEmailDomains, domain) {
		return invalid("Sorry, only popular email providers are allowed at this time.")
	}
	return nil
}

// PasswordProblems lists every policy the password breaks; an empty result
// means the password is acceptable.
func PasswordProblems(password, email string) []string {
	var problems []string

	if len(password) < minPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long.")
	}
	if !hasDigit.MatchString(password) || !hasLetter.MatchString(password) {
		problems = append(problems, "Password must include both letters and numbers.")
	}
	if slices.Contains(commonPasswords, strings.ToLower(password)) {
		problems = append(problems, "Password is too common. Please choose a stronger one.")
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" &&
		strings.Contains(strings.ToLower(password), strings.ToLower(local)) {
		problems = append(problems, "Password should not contain your email address.")
	}
	return problems
}

// ValidatePassword returns the first policy violation, if any.
func ValidatePassword(password, email string) error {
	if problems := PasswordProblems(password, email); len(problems) > 0 {
		return invalid(problems[0])
	}
	return nil
}

// ValidateFullName checks the trimmed name is 3 to 50 characters of letters,
// spaces, hyphens and apostrophes.
func ValidateFullName(name string) error {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n < minFullNameLength:
		return invalid("Full name must be at least 3 characters.")
	case n > maxFullNameLength:
		return invalid("Full name cannot exceed 50 characters.")
	case !fullNamePattern.MatchString(trimmed):
		return invalid("Full name can only contain letters, spaces, hyphens, and apostrophes.")
	}
	return nil
}

// ValidateUsername checks the username is 3 to 20 letters, digits or underscores.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	switch {
	case n < minUsernameLength:
		return invalid("Username must be at least 3 characters.")
	case n > maxUsernameLength:
		return invalid("Username cannot exceed 20 characters.")
	case !usernamePattern.MatchString(username):
		return invalid("Username can only contain letters, numbers, and underscores.")
	}
	return nil
}

// ValidVerificationCode reports whether code is exactly five digits.
func ValidVerificationCode(code string) bool {
	return codePattern.MatchString(code)
}
