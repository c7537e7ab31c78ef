package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth-portal/internal/credentials"
	"auth-portal/internal/domain"
	"auth-portal/internal/service"
	"auth-portal/internal/token"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTokenRouter(t *testing.T, ttl time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("SecurePass123!"), bcrypt.MinCost)
	require.NoError(t, err)

	store := credentials.NewStore(domain.Identity{
		Username:     "admin",
		PasswordHash: string(hash),
	})
	svc := service.NewAuthService(store, token.NewCodec("test-secret", ttl))

	logger := testLogger()
	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	NewHandler(svc, nil, nil, 0, logger).RegisterTokenRoutes(router)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postVerify(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := postJSON(router, "/api/auth/login", `{"username":"admin","password":"SecurePass123!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)
	w := postJSON(router, "/api/auth/login", `{"username":"admin","password":"SecurePass123!"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Authentication successful", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Username)
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)

	tests := []struct {
		name string
		body string
	}{
		{"empty username", `{"username":"","password":"x"}`},
		{"empty password", `{"username":"admin","password":""}`},
		{"absent fields", `{}`},
		{"malformed body", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/auth/login", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Username and password are required"}`, w.Body.String())
		})
	}
}

func TestLogin_BadCredentialsUniform(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)

	wrongUser := postJSON(router, "/api/auth/login", `{"username":"root","password":"SecurePass123!"}`)
	wrongPass := postJSON(router, "/api/auth/login", `{"username":"admin","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongUser.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	// Identical responses: which field was wrong must not be observable.
	assert.Equal(t, wrongUser.Body.String(), wrongPass.Body.String())
	assert.JSONEq(t, `{"success":false,"message":"Invalid username or password"}`, wrongUser.Body.String())
}

func TestVerify_OK(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)
	tok := loginToken(t, router)

	w := postVerify(router, "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Username      string `json:"username"`
			Authenticated bool   `json:"authenticated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Token is valid", resp.Message)
	assert.Equal(t, "admin", resp.Data.Username)
	assert.True(t, resp.Data.Authenticated)
}

func TestVerify_Idempotent(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)
	tok := loginToken(t, router)

	first := postVerify(router, "Bearer "+tok)
	second := postVerify(router, "Bearer "+tok)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestVerify_NoToken(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"empty bearer", "Bearer "},
		{"wrong scheme", "Basic YWRtaW46eA=="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postVerify(router, tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"No token provided"}`, w.Body.String())
		})
	}
}

func TestVerify_Tampered(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)
	tok := loginToken(t, router)

	i := len(tok) / 2
	replacement := byte('A')
	if tok[i] == 'A' {
		replacement = 'B'
	}
	tampered := tok[:i] + string(replacement) + tok[i+1:]

	w := postVerify(router, "Bearer "+tampered)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid token"}`, w.Body.String())
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	// A codec with a negative TTL issues tokens already past their expiry,
	// standing in for the clock moving past the one-hour mark.
	router := newTokenRouter(t, -time.Minute)
	tok := loginToken(t, router)

	w := postVerify(router, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid token"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	router := newTokenRouter(t, time.Hour)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
