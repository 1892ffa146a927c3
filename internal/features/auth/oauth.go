package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xyz-asif/ebooks/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	githubAPIURL      = "https://api.github.com"
)

// OAuthProvider is one configured redirect-based login provider
type OAuthProvider struct {
	Name   Provider
	Config *oauth2.Config
	// APIURL is the profile endpoint base (Google userinfo URL, GitHub API root).
	APIURL string
}

// NewOAuthProviders builds the providers that have client credentials configured
func NewOAuthProviders(cfg *config.Config) map[Provider]*OAuthProvider {
	providers := make(map[Provider]*OAuthProvider)
	base := strings.TrimRight(cfg.OAuthCallbackBaseURL, "/")

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers[ProviderGoogle] = &OAuthProvider{
			Name: ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  base + "/api/users/auth/google/callback",
				Scopes:       []string{"openid", "profile", "email"},
			},
			APIURL: googleUserInfoURL,
		}
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers[ProviderGitHub] = &OAuthProvider{
			Name: ProviderGitHub,
			Config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  base + "/api/users/auth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
			},
			APIURL: githubAPIURL,
		}
	}

	return providers
}

// Profile exchanges the authorization code and fetches the account profile
func (p *OAuthProvider) Profile(ctx context.Context, code string) (*ProviderProfile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s code exchange failed: %w", p.Name, err)
	}
	client := p.Config.Client(ctx, token)

	switch p.Name {
	case ProviderGoogle:
		return p.googleProfile(ctx, client)
	case ProviderGitHub:
		return p.githubProfile(ctx, client)
	}
	return nil, fmt.Errorf("unsupported provider %q", p.Name)
}

func (p *OAuthProvider) googleProfile(ctx context.Context, client *http.Client) (*ProviderProfile, error) {
	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := getJSON(ctx, client, p.APIURL, &info); err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("google profile has no subject")
	}
	return &ProviderProfile{
		Provider:      ProviderGoogle,
		ID:            info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
	}, nil
}

func (p *OAuthProvider) githubProfile(ctx context.Context, client *http.Client) (*ProviderProfile, error) {
	api := strings.TrimRight(p.APIURL, "/")

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, api+"/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("github profile has no id")
	}

	profile := &ProviderProfile{
		Provider: ProviderGitHub,
		ID:       strconv.FormatInt(user.ID, 10),
		Name:     user.Name,
		Login:    user.Login,
	}

	// The public profile email may be hidden; the emails endpoint also reports verification.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, api+"/user/emails", &emails); err != nil {
		return nil, err
	}
	for _, e := range emails {
		if e.Primary {
			profile.Email, profile.EmailVerified = e.Email, e.Verified
			break
		}
	}
	if profile.Email == "" {
		for _, e := range emails {
			if e.Verified {
				profile.Email, profile.EmailVerified = e.Email, true
				break
			}
		}
	}

	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
