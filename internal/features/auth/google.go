package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// TokenValidator validates a Google ID token for the given audience
type TokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// VerifyGoogleToken verifies the Google ID token using google.golang.org/api/idtoken
func VerifyGoogleToken(ctx context.Context, validate TokenValidator, idToken, clientID string) (*ProviderProfile, error) {
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, idToken, clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}

	profile := &ProviderProfile{
		Provider: ProviderGoogle,
		ID:       payload.Subject,
	}

	if email, ok := payload.Claims["email"].(string); ok {
		profile.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		profile.Name = name
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		profile.EmailVerified = verified
	}

	return profile, nil
}
