package validator

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

var (
	emailRegex    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// IsValidEmail checks if the email format is valid
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUsername checks the username length and character set
func IsValidUsername(username string) bool {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength {
		return false
	}
	return usernameRegex.MatchString(username)
}

// IsValidPassword checks the minimum password length
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// ParseYear parses a publication year. Any integer is accepted.
func ParseYear(s string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return year, true
}
