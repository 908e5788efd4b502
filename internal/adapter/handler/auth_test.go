package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/handler"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/middleware"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/security"
)

const testSecret = "test-secret"

// fakeUserRepo keeps registered users in memory, keyed by email.
type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, name, email, password string) (*domain.User, error) {
	if _, exists := f.users[email]; exists {
		return nil, domain.ErrEmailTaken
	}
	f.nextID++
	u := &domain.User{ID: f.nextID, Name: name, Email: email, Password: password}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newAuthApp(repo handler.AuthUserStore) *fiber.App {
	h := &handler.AuthHandler{Repo: repo, JWTSecret: testSecret}
	app := fiber.New()
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/authenticate", middleware.Protected(testSecret), h.Authenticate)
	return app
}

func TestRegisterValidation(t *testing.T) {
	app := newAuthApp(newFakeUserRepo())

	cases := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"missing fields", map[string]any{"email": "a@b.co"}, "All fields are required"},
		{"bad email", map[string]any{"name": "A", "email": "not-an-email", "password": "x"}, "Invalid email format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/auth/register", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.message, decode(t, resp)["error"])
		})
	}
}

func TestRegisterAndDuplicate(t *testing.T) {
	app := newAuthApp(newFakeUserRepo())
	body := map[string]any{"name": "Dika", "email": "dika@mail.com", "password": "rahasia"}

	resp := postJSON(t, app, "/auth/register", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "Created Success", out["message"])
	data := out["data"].(map[string]any)
	assert.Equal(t, "dika@mail.com", data["email"])
	// The hash must never be serialized.
	assert.NotContains(t, data, "password")

	resp = postJSON(t, app, "/auth/register", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already exists", decode(t, resp)["error"])
}

func TestLoginFlow(t *testing.T) {
	repo := newFakeUserRepo()
	app := newAuthApp(repo)

	resp := postJSON(t, app, "/auth/register", map[string]any{
		"name": "Dika", "email": "dika@mail.com", "password": "rahasia",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Unknown email: 404, same message as a bad password.
	resp = postJSON(t, app, "/auth/login", map[string]any{"email": "nobody@mail.com", "password": "x"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decode(t, resp)["error"])

	// Wrong password: 400.
	resp = postJSON(t, app, "/auth/login", map[string]any{"email": "dika@mail.com", "password": "salah"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decode(t, resp)["error"])

	// Success: token carries the user's identity.
	resp = postJSON(t, app, "/auth/login", map[string]any{"email": "dika@mail.com", "password": "rahasia"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "Success", out["message"])

	token := out["accessToken"].(string)
	claims, err := security.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "Dika", claims.Name)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	app := newAuthApp(repo)

	// No token.
	req := httptest.NewRequest(http.MethodGet, "/auth/authenticate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", decode(t, resp)["message"])

	// Garbage token.
	req = httptest.NewRequest(http.MethodGet, "/auth/authenticate", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid token, with and without the Bearer prefix.
	token, err := security.GenerateToken(testSecret, 1, "Dika")
	require.NoError(t, err)

	for _, header := range []string{token, "Bearer " + token} {
		req = httptest.NewRequest(http.MethodGet, "/auth/authenticate", nil)
		req.Header.Set("Authorization", header)
		resp, err = app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Anda Sudah ter Authenticate", decode(t, resp)["message"])
	}
}
