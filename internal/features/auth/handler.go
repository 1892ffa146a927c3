package auth

// Swagger API metadata is defined globally in cmd/api/main.go

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/ebooks/internal/config"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/response"
)

const stateCookiePrefix = "oauth_state_"

type Handler struct {
	service        *Service
	providers      map[Provider]*OAuthProvider
	frontendURL    string
	googleClientID string
	validateGoogle TokenValidator
	secureCookies  bool
	debug          bool
}

func NewHandler(service *Service, providers map[Provider]*OAuthProvider, cfg *config.Config) *Handler {
	frontend := strings.TrimSpace(strings.Split(cfg.FrontendURL, ",")[0])
	return &Handler{
		service:        service,
		providers:      providers,
		frontendURL:    strings.TrimRight(frontend, "/"),
		googleClientID: cfg.GoogleClientID,
		secureCookies:  cfg.IsProduction(),
		debug:          !cfg.IsProduction(),
	}
}

// Register godoc
// @Summary Register a new user
// @Description Register a new user with username, email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "User registration data"
// @Success 201 {object} response.APIResponse{data=AuthResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 429 {object} response.APIResponse
// @Router /users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "All fields are required", "VALIDATION_FAILED")
		return
	}

	NormalizeRegister(&req)
	if err := ValidateRegister(&req); err != nil {
		response.BadRequest(c, err.Error(), "VALIDATION_FAILED")
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.Created(c, resp, "User registered successfully")
	case errors.Is(err, ErrEmailTaken):
		response.BadRequest(c, err.Error(), "EMAIL_EXISTS")
	case errors.Is(err, ErrUsernameTaken):
		response.BadRequest(c, err.Error(), "USERNAME_EXISTS")
	case isDuplicate(err):
		response.Conflict(c, "Email or username already registered", "DUPLICATE_USER")
	default:
		logger.Error("register %s: %v", req.Email, err)
		response.ServerError(c, "Failed to register user", "REGISTER_FAILED", err, h.debug)
	}
}

// Login godoc
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "User login credentials"
// @Success 200 {object} response.APIResponse{data=AuthResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 429 {object} response.APIResponse
// @Router /users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email and password are required", "VALIDATION_FAILED")
		return
	}

	if err := ValidateLogin(&req); err != nil {
		response.BadRequest(c, err.Error(), "VALIDATION_FAILED")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error(), "INVALID_CREDENTIALS")
			return
		}
		logger.Error("login %s: %v", req.Email, err)
		response.ServerError(c, "Failed to log in", "LOGIN_FAILED", err, h.debug)
		return
	}

	response.Success(c, resp, "Login successful")
}

// Info godoc
// @Summary Get current user
// @Description Get the profile of the currently authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=User}
// @Failure 401 {object} response.APIResponse
// @Router /users/info [get]
func (h *Handler) Info(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
		return
	}

	response.Success(c, user, "ok")
}

// ResetPassword godoc
// @Summary Change password
// @Description Change the password of a local (non-OAuth) account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ResetPasswordRequest true "Current and new password"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /users/reset-password [put]
func (h *Handler) ResetPassword(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Not authorized, user not found.", "USER_NOT_FOUND")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Current and new password are required", "VALIDATION_FAILED")
		return
	}

	err := h.service.ResetPassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		response.Success(c, nil, "Password updated successfully")
	case errors.Is(err, ErrThirdPartyAccount):
		response.BadRequest(c, err.Error(), "THIRD_PARTY_ACCOUNT")
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrSamePassword):
		response.BadRequest(c, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrWrongPassword):
		response.Unauthorized(c, err.Error(), "WRONG_PASSWORD")
	default:
		logger.Error("reset password for %s: %v", user.ID.Hex(), err)
		response.ServerError(c, "Failed to update password", "RESET_PASSWORD_FAILED", err, h.debug)
	}
}

// GoogleToken godoc
// @Summary Sign in with a Google ID token
// @Description Validate a Google ID token obtained by the client and sign the user in
// @Tags users
// @Accept json
// @Produce json
// @Param request body GoogleTokenRequest true "Google ID token"
// @Success 200 {object} response.APIResponse{data=AuthResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /users/auth/google/token [post]
func (h *Handler) GoogleToken(c *gin.Context) {
	if h.googleClientID == "" {
		response.NotFound(c, "Google sign-in is not configured", "PROVIDER_DISABLED")
		return
	}

	var req GoogleTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "idToken is required", "VALIDATION_FAILED")
		return
	}

	profile, err := VerifyGoogleToken(c.Request.Context(), h.validateGoogle, req.IDToken, h.googleClientID)
	if err != nil {
		logger.Warn("google token rejected: %v", err)
		response.Unauthorized(c, "Invalid Google token", "INVALID_GOOGLE_TOKEN")
		return
	}

	resp, err := h.service.SignInWithProvider(c.Request.Context(), profile)
	if err != nil {
		h.providerError(c, err)
		return
	}

	response.Success(c, resp, "Login successful")
}

func (h *Handler) providerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProviderEmail), errors.Is(err, ErrEmailNotVerified):
		response.BadRequest(c, err.Error(), "PROVIDER_EMAIL")
	case isDuplicate(err):
		response.Conflict(c, "Account already linked to another user", "DUPLICATE_USER")
	default:
		logger.Error("provider sign-in: %v", err)
		response.ServerError(c, "Failed to sign in", "OAUTH_FAILED", err, h.debug)
	}
}

// BeginOAuth godoc
// @Summary Start OAuth sign-in
// @Description Redirect to the identity provider consent screen
// @Tags users
// @Param provider path string true "google or github"
// @Success 302
// @Failure 404 {object} response.APIResponse
// @Router /users/auth/{provider} [get]
func (h *Handler) BeginOAuth(c *gin.Context) {
	provider, ok := h.providers[Provider(c.Param("provider"))]
	if !ok {
		response.NotFound(c, "Unknown or unconfigured provider", "PROVIDER_DISABLED")
		return
	}

	state, err := randomState()
	if err != nil {
		response.ServerError(c, "Failed to start sign-in", "OAUTH_FAILED", err, h.debug)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookiePrefix+string(provider.Name), state, 600, "/api/users/auth", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, provider.Config.AuthCodeURL(state))
}

// OAuthCallback godoc
// @Summary OAuth callback
// @Description Complete OAuth sign-in and redirect to the client with a token
// @Tags users
// @Param provider path string true "google or github"
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 302
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /users/auth/{provider}/callback [get]
func (h *Handler) OAuthCallback(c *gin.Context) {
	provider, ok := h.providers[Provider(c.Param("provider"))]
	if !ok {
		response.NotFound(c, "Unknown or unconfigured provider", "PROVIDER_DISABLED")
		return
	}

	cookieName := stateCookiePrefix + string(provider.Name)
	expected, _ := c.Cookie(cookieName)
	c.SetCookie(cookieName, "", -1, "/api/users/auth", "", h.secureCookies, true)

	if expected == "" || c.Query("state") != expected {
		response.BadRequest(c, "Invalid OAuth state", "INVALID_STATE")
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		h.redirectFailure(c, errParam)
		return
	}

	profile, err := provider.Profile(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Warn("%s oauth profile: %v", provider.Name, err)
		h.redirectFailure(c, "oauth_failed")
		return
	}

	resp, err := h.service.SignInWithProvider(c.Request.Context(), profile)
	if err != nil {
		logger.Warn("%s oauth sign-in: %v", provider.Name, err)
		h.redirectFailure(c, "oauth_failed")
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/auth-success?token="+url.QueryEscape(resp.Token))
}

func (h *Handler) redirectFailure(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error="+url.QueryEscape(reason))
}
