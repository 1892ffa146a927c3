package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xyz-asif/ebooks/internal/config"
	jwtpkg "github.com/xyz-asif/ebooks/internal/pkg/jwt"
	apperr "github.com/xyz-asif/ebooks/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

const testSecret = "test-secret"

type memStore struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*User
	createErr error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[primitive.ObjectID]*User)}
}

func (s *memStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("%w: E11000", apperr.ErrDuplicate)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) find(match func(*User) bool) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrInvalidID
	}
	if u := s.find(func(u *User) bool { return u.ID == oid }); u != nil {
		return u, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return s.find(func(u *User) bool { return u.Email == email }), nil
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*User, error) {
	return s.find(func(u *User) bool { return u.Username == username }), nil
}

func (s *memStore) FindByProviderID(_ context.Context, p Provider, id string) (*User, error) {
	return s.find(func(u *User) bool {
		return (p == ProviderGoogle && u.GoogleID == id) || (p == ProviderGitHub && u.GitHubID == id)
	}), nil
}

func (s *memStore) LinkProvider(_ context.Context, userID primitive.ObjectID, p Provider, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	setProviderID(u, p, id)
	return nil
}

func (s *memStore) UpdatePassword(_ context.Context, userID primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (s *memStore) seed(t *testing.T, u *User, password string) *User {
	t.Helper()
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		u.Password = string(hash)
	}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

type testEnv struct {
	router  *gin.Engine
	store   *memStore
	handler *Handler
	service *Service
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg == nil {
		cfg = &config.Config{FrontendURL: "http://localhost:3000"}
	}

	store := newMemStore()
	service := NewService(store, jwtpkg.DefaultConfig(testSecret))
	handler := NewHandler(service, map[Provider]*OAuthProvider{}, cfg)

	r := gin.New()
	Routes(r.Group("/api"), handler, NewAuthMiddleware(store, testSecret), nil)
	return &testEnv{router: r, store: store, handler: handler, service: service}
}

func (e *testEnv) do(method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRegister_ServerErrorDetail(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.createErr = fmt.Errorf("write concern timeout")

	w, body := env.do("POST", "/api/users/register",
		`{"username":"reader","email":"reader@example.com","password":"password1"}`, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "REGISTER_FAILED", body["code"])
	require.Equal(t, "write concern timeout", body["error"])

	prod := newTestEnv(t, &config.Config{FrontendURL: "http://localhost:3000", AppEnv: "production"})
	prod.store.createErr = fmt.Errorf("write concern timeout")

	w, body = prod.do("POST", "/api/users/register",
		`{"username":"reader","email":"reader@example.com","password":"password1"}`, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Failed to register user", body["message"])
	require.NotContains(t, body, "error")
}

func TestRegister_HashesPasswordAndReturnsToken(t *testing.T) {
	env := newTestEnv(t, nil)

	w, body := env.do("POST", "/api/users/register",
		`{"username":" bookworm ","email":" Reader@Example.com ","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	data := body["data"].(map[string]any)
	require.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	require.Equal(t, "bookworm", user["username"])
	require.Equal(t, "reader@example.com", user["email"])
	require.NotContains(t, user, "password")

	stored, _ := env.store.FindByEmail(context.Background(), "reader@example.com")
	require.NotNil(t, stored)
	require.NotEqual(t, "correct-horse", stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct-horse")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.seed(t, &User{Username: "first", Email: "dup@example.com"}, "password1")

	w, body := env.do("POST", "/api/users/register",
		`{"username":"second","email":"dup@example.com","password":"password2"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "EMAIL_EXISTS", body["code"])
}

func TestRegister_DuplicateKeyRace(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.createErr = fmt.Errorf("%w: E11000 duplicate key", apperr.ErrDuplicate)

	w, body := env.do("POST", "/api/users/register",
		`{"username":"racer","email":"race@example.com","password":"password1"}`, "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, false, body["success"])
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []string{
		`{"username":"ab","email":"a@b.co","password":"password1"}`,
		`{"username":"reader","email":"not-an-email","password":"password1"}`,
		`{"username":"reader","email":"a@b.co","password":"short"}`,
		`{"username":"reader","email":"a@b.co"}`,
	}
	for _, c := range cases {
		w, _ := env.do("POST", "/api/users/register", c, "")
		require.Equal(t, http.StatusBadRequest, w.Code, c)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.seed(t, &User{Username: "reader", Email: "reader@example.com"}, "password1")
	env.store.seed(t, &User{Username: "googler", Email: "g@example.com", GoogleID: "g-1"}, "")

	w, body := env.do("POST", "/api/users/login", `{"email":"READER@example.com","password":"password1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := body["data"].(map[string]any)["token"].(string)

	claims, err := jwtpkg.ValidateToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "reader", claims.Username)

	w, body = env.do("POST", "/api/users/login", `{"email":"reader@example.com","password":"wrong-pass"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid email or password", body["message"])

	w, _ = env.do("POST", "/api/users/login", `{"email":"g@example.com","password":"anything1"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do("POST", "/api/users/login", `{"email":"nobody@example.com","password":"password1"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_Unauthorized(t *testing.T) {
	env := newTestEnv(t, nil)

	w, body := env.do("GET", "/api/users/info", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, float64(401), body["statusCode"])
	require.Equal(t, "Not authorized, token missing.", body["message"])

	w, body = env.do("GET", "/api/users/info", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Not authorized, invalid token.", body["message"])

	ghost, err := jwtpkg.GenerateToken(primitive.NewObjectID().Hex(), "ghost", "ghost@example.com", jwtpkg.DefaultConfig(testSecret))
	require.NoError(t, err)
	w, body = env.do("GET", "/api/users/info", "", ghost)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Not authorized, user not found.", body["message"])
}

func TestInfo(t *testing.T) {
	env := newTestEnv(t, nil)
	u := env.store.seed(t, &User{Username: "hub", Email: "hub@example.com", GitHubID: "42"}, "")
	token, err := env.service.IssueToken(u)
	require.NoError(t, err)

	w, body := env.do("GET", "/api/users/info", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	require.Equal(t, "hub", data["username"])
	require.Equal(t, "42", data["githubId"])
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv(t, nil)
	u := env.store.seed(t, &User{Username: "reader", Email: "reader@example.com"}, "password1")
	token, err := env.service.IssueToken(u)
	require.NoError(t, err)

	w, _ := env.do("PUT", "/api/users/reset-password", `{"currentPassword":"wrong-one","newPassword":"password2"}`, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do("PUT", "/api/users/reset-password", `{"currentPassword":"password1","newPassword":"short"}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do("PUT", "/api/users/reset-password", `{"currentPassword":"password1","newPassword":"password1"}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do("PUT", "/api/users/reset-password", `{"currentPassword":"password1","newPassword":"password2"}`, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do("POST", "/api/users/login", `{"email":"reader@example.com","password":"password2"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestResetPassword_ThirdPartyRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	u := env.store.seed(t, &User{Username: "googler", Email: "g@example.com", GoogleID: "g-1"}, "")
	token, err := env.service.IssueToken(u)
	require.NoError(t, err)

	w, body := env.do("PUT", "/api/users/reset-password", `{"currentPassword":"whatever1","newPassword":"password2"}`, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "THIRD_PARTY_ACCOUNT", body["code"])
}

func TestGoogleToken(t *testing.T) {
	env := newTestEnv(t, &config.Config{FrontendURL: "http://localhost:3000", GoogleClientID: "client-1"})
	existing := env.store.seed(t, &User{Username: "reader", Email: "reader@example.com"}, "password1")

	env.handler.validateGoogle = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		require.Equal(t, "client-1", audience)
		if token != "good" {
			return nil, fmt.Errorf("bad signature")
		}
		return &idtoken.Payload{
			Subject: "google-sub-1",
			Claims: map[string]interface{}{
				"email":          "reader@example.com",
				"email_verified": true,
				"name":           "Reader",
			},
		}, nil
	}

	w, _ := env.do("POST", "/api/users/auth/google/token", `{"idToken":"bad"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := env.do("POST", "/api/users/auth/google/token", `{"idToken":"good"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	require.Equal(t, existing.ID.Hex(), user["id"])
	require.Equal(t, "google-sub-1", user["googleId"])
}

func TestOAuthCallback_CreatesUserAndRedirects(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
		case "/user":
			_, _ = w.Write([]byte(`{"id":1234,"login":"octo","name":"Octo Cat"}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[{"email":"octo@example.com","primary":true,"verified":true}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	env := newTestEnv(t, nil)
	env.handler.providers[ProviderGitHub] = &OAuthProvider{
		Name: ProviderGitHub,
		Config: &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: provider.URL + "/authorize", TokenURL: provider.URL + "/token"},
			RedirectURL:  "http://localhost:8080/api/users/auth/github/callback",
		},
		APIURL: provider.URL,
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/users/auth/github", nil))
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest("GET", "/api/users/auth/github/callback?code=xyz&state="+state, nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	redirect, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/auth-success", redirect.Path)

	claims, err := jwtpkg.ValidateToken(redirect.Query().Get("token"), testSecret)
	require.NoError(t, err)
	require.Equal(t, "octo_cat", claims.Username)

	created, _ := env.store.FindByProviderID(context.Background(), ProviderGitHub, "1234")
	require.NotNil(t, created)
	require.Equal(t, "octo@example.com", created.Email)
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	env := newTestEnv(t, nil)
	env.handler.providers[ProviderGoogle] = &OAuthProvider{Name: ProviderGoogle, Config: &oauth2.Config{}}

	req := httptest.NewRequest("GET", "/api/users/auth/google/callback?code=x&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: stateCookiePrefix + "google", Value: "real"})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/users/auth/facebook", bytes.NewReader(nil)))
	require.Equal(t, http.StatusNotFound, w.Code)
}
