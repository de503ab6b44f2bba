// Package validator enforces the input rules applied before any data
// reaches the credential store, plus sanitization for free-text fields.
// Validation rejects malformed input outright; sanitization only runs on
// input that already passed validation.
package validator

import (
	"encoding/base64"
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MaxEmailLength    = 255
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxGenderLength   = 32
	MaxAvatarBytes    = 2 * 1024 * 1024
)

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// Characters rejected everywhere: the HTML/injection set plus NUL.
	dangerousChars = "<>\"'&\x00"
	// Usernames additionally reject shell metacharacters.
	usernameDangerousChars = dangerousChars + ";|`"
)

var (
	ErrEmailFormat      = errors.New("email format is invalid")
	ErrEmailTooLong     = errors.New("email exceeds 255 characters")
	ErrEmailUnsafe      = errors.New("email contains forbidden characters")
	ErrUsernameLength   = errors.New("username must be 3-20 characters")
	ErrUsernameCharset  = errors.New("username may only contain letters, digits, underscore and hyphen")
	ErrPasswordLength   = errors.New("password must be 8-128 characters")
	ErrPasswordTooWeak  = errors.New("password must contain at least one letter and one digit")
	ErrAvatarTooLarge   = errors.New("avatar exceeds 2 MiB")
	ErrAvatarNotEncoded = errors.New("avatar must be a base64-encoded blob")
)

// ValidateEmail checks format, length and the dangerous-character set.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if strings.ContainsAny(email, dangerousChars) {
		return ErrEmailUnsafe
	}
	if !emailRe.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}

// NormalizeEmail lowercases an already-validated address so the store's
// case-insensitive uniqueness holds on the exact-match index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername checks length and charset. The charset already excludes
// the dangerous sets, but the explicit check keeps the rejection reason
// stable if the pattern is ever widened.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrUsernameLength
	}
	if strings.ContainsAny(username, usernameDangerousChars) || !usernameRe.MatchString(username) {
		return ErrUsernameCharset
	}
	return nil
}

// ValidatePassword checks length and requires at least one letter and one
// digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrPasswordLength
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}

// ValidateAvatar requires a base64-encoded payload of at most 2 MiB. A
// data-URI prefix is tolerated.
func ValidateAvatar(avatar string) error {
	if len(avatar) > MaxAvatarBytes {
		return ErrAvatarTooLarge
	}
	payload := avatar
	if idx := strings.IndexByte(payload, ','); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ErrAvatarNotEncoded
	}
	return nil
}

// SanitizeText strips ASCII control characters, HTML-escapes the rest and
// truncates to max runes. Applied to free-text fields after validation.
func SanitizeText(s string, max int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	out := html.EscapeString(b.String())
	runes := []rune(out)
	if len(runes) > max {
		out = string(runes[:max])
	}
	return out
}

// IsUsername 是一个自定义的校验函数，注册为 binding tag "username"
func IsUsername(fl validator.FieldLevel) bool {
	return ValidateUsername(fl.Field().String()) == nil
}

// IsUserPassword 注册为 binding tag "userpassword"
func IsUserPassword(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String()) == nil
}
