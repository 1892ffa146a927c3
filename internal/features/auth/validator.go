package auth

import (
	"errors"
	"strings"

	"github.com/xyz-asif/ebooks/internal/pkg/validator"
)

// NormalizeRegister trims input and lowercases the email, as stored.
func NormalizeRegister(req *RegisterRequest) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

// ValidateRegister checks the registration payload after normalization
func ValidateRegister(req *RegisterRequest) error {
	if !validator.IsValidUsername(req.Username) {
		return errors.New("username must be at least 3 characters and contain only letters, numbers, dots, underscores, or hyphens")
	}
	if !validator.IsValidEmail(req.Email) {
		return errors.New("please enter a valid email address")
	}
	if !validator.IsValidPassword(req.Password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ValidateLogin checks the login payload
func ValidateLogin(req *LoginRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}
