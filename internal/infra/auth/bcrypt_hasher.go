// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strconv"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"marketplace/config"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/service"
)

const (
	defaultBcryptCost = 12
	defaultMinLength  = 8
	defaultMaxLength  = 72 // bcrypt truncates beyond 72 bytes
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost     int
	strength *config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher. Cost and strength
// requirements come from configuration; the cost floor is 12.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := defaultBcryptCost
	var strength *config.PasswordStrengthConfig

	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost >= defaultBcryptCost {
		cost = cfg.Auth.BcryptCost
	}
	if cfg != nil {
		strength = cfg.PasswordStrength
	}

	return &bcryptHasher{cost: cost, strength: strength}
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost.
// Tests use this to avoid paying the production cost factor.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt handles salt generation itself.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash. The underlying
// primitive provides constant-time comparison semantics.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength validates a plaintext password against the
// configured requirements before hashing.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	minLength := defaultMinLength
	maxLength := defaultMaxLength
	var requireUpper, requireLower, requireNumbers, requireSpecial bool

	if h.strength != nil {
		if h.strength.MinLength > 0 {
			minLength = h.strength.MinLength
		}
		if h.strength.MaxLength > 0 {
			maxLength = h.strength.MaxLength
		}
		requireUpper = h.strength.RequireUppercase
		requireLower = h.strength.RequireLowercase
		requireNumbers = h.strength.RequireNumbers
		requireSpecial = h.strength.RequireSpecial
	}

	if len(password) < minLength {
		return domainerrors.ErrValidationFailed.WrapMessage("password must be at least " + strconv.Itoa(minLength) + " characters long")
	}
	if len(password) > maxLength {
		return domainerrors.ErrValidationFailed.WrapMessage("password must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	if requireUpper && !containsClass(password, unicode.IsUpper) {
		return domainerrors.ErrValidationFailed.WrapMessage("password must contain at least one uppercase letter")
	}
	if requireLower && !containsClass(password, unicode.IsLower) {
		return domainerrors.ErrValidationFailed.WrapMessage("password must contain at least one lowercase letter")
	}
	if requireNumbers && !containsClass(password, unicode.IsDigit) {
		return domainerrors.ErrValidationFailed.WrapMessage("password must contain at least one number")
	}
	if requireSpecial && !containsSpecial(password) {
		return domainerrors.ErrValidationFailed.WrapMessage("password must contain at least one special character")
	}

	return nil
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}

	return false
}

func containsSpecial(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}

		return true
	}

	return false
}
