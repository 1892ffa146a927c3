package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider names an external identity provider
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// bsonField is the user document field holding this provider's account id
func (p Provider) bsonField() string {
	switch p {
	case ProviderGoogle:
		return "googleId"
	case ProviderGitHub:
		return "githubId"
	}
	return ""
}

// User represents a registered user in the system
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	GoogleID  string             `bson:"googleId,omitempty" json:"googleId,omitempty"`
	GitHubID  string             `bson:"githubId,omitempty" json:"githubId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsThirdParty reports whether the account was created through an OAuth provider
func (u *User) IsThirdParty() bool {
	return u.GoogleID != "" || u.GitHubID != ""
}

// RegisterRequest represents the payload for local registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"bookworm"`
	Email    string `json:"email" binding:"required" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

// LoginRequest represents the payload for local login
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

// ResetPasswordRequest represents the payload for changing a local password
type ResetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// GoogleTokenRequest carries a Google ID token obtained by the client
type GoogleTokenRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ProviderProfile is the identity returned by an OAuth provider
type ProviderProfile struct {
	Provider      Provider
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	Login         string
}
