package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const base62Chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateKey returns prefix followed by n random base62 characters.
func GenerateKey(prefix string, n int) (string, error) {
	var sb strings.Builder
	sb.Grow(len(prefix) + n)
	sb.WriteString(prefix)

	for range n {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Chars))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(base62Chars[num.Int64()])
	}

	return sb.String(), nil
}

// GeneratePassword returns a random 16 character password.
func GeneratePassword() (string, error) {
	return GenerateKey("", 16)
}
