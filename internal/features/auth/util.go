package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var usernameStrip = regexp.MustCompile(`[^a-z0-9_]+`)

// GenerateUniqueUsername generates a base username from a display name.
// Uniqueness is checked by the caller.
func GenerateUniqueUsername(displayName string) string {
	username := strings.ToLower(strings.TrimSpace(displayName))
	username = strings.ReplaceAll(username, " ", "_")
	username = usernameStrip.ReplaceAllString(username, "")

	if len(username) > 20 {
		username = username[:20]
	}

	if len(username) < 3 {
		username = "user_" + username
	}

	return username
}

// withSuffix appends a random 4-digit suffix to a base username
func withSuffix(base string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return base + "_0000"
	}
	return fmt.Sprintf("%s_%04d", base, n.Int64())
}

// randomState returns a hex token for the OAuth state parameter
func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
