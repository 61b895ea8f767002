// Package password hashes and checks account passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the shortest password accepted by Hash.
const MinLength = 8

var (
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)
	// ErrTooLong is returned for passwords bcrypt would silently truncate.
	ErrTooLong = errors.New("password must be at most 72 bytes")
)

// Hash returns the bcrypt hash of plain at the default cost.
func Hash(plain string) (string, error) {
	return HashCost(plain, bcrypt.DefaultCost)
}

// HashCost is Hash with an explicit bcrypt cost.
func HashCost(plain string, cost int) (string, error) {
	if len([]rune(plain)) < MinLength {
		return "", ErrTooShort
	}
	if len(plain) > 72 {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Check reports whether plain matches hashed.
func Check(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
