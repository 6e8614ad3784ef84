package secrets

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used by HashPassword.
var Cost = bcrypt.DefaultCost

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var ErrEmptyPassword = errors.New("password must not be empty")

func HashPassword(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyPassword
	}
	if len(raw) > MaxPasswordBytes {
		return "", bcrypt.ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func VerifyPassword(hash, raw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// IsHash reports whether s is a bcrypt hash.
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
