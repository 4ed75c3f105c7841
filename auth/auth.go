// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken    = errors.New("invalid token format")
	ErrInvalidLogin    = errors.New("login can only contain letters, numbers or underscores")
	ErrInvalidEmail    = errors.New("email must be a trigram at the league domain")
	ErrInvalidPassword = errors.New("invalid password")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

var loginPattern = regexp.MustCompile(`^\w+$`)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GeneratePlayerToken creates a random secure token for a player.
// Only its HMAC is stored server side.
func GeneratePlayerToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate player token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashToken derives the stored lookup key for a player token.
func HashToken(token, salt string) (string, error) {
	if len(token) < 16 || strings.ContainsAny(token, " \t\n=") {
		return "", ErrInvalidToken
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashPassword returns a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", ErrPasswordTooWeak
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with a stored bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateLogin checks a player handle.
func ValidateLogin(login string) error {
	if !loginPattern.MatchString(login) {
		return ErrInvalidLogin
	}
	return nil
}

// ValidateEmail checks that email is "<trigram>@<domain>".
// An empty email is accepted.
func ValidateEmail(email, domain string) error {
	if email == "" {
		return nil
	}
	pattern := `^\w{3}@` + regexp.QuoteMeta(domain) + `$`
	ok, err := regexp.MatchString(pattern, email)
	if err != nil || !ok {
		return ErrInvalidEmail
	}
	return nil
}
