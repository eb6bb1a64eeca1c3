package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any username or password mismatch
var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword returns the bcrypt hash of a password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password against a bcrypt hash, falling back to a
// constant-time plain comparison when only a development password is set.
func CheckPassword(password, hash, plain string) error {
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	if plain == "" || subtle.ConstantTimeCompare([]byte(password), []byte(plain)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
