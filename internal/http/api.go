package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"auth-portal/internal/domain"
	"auth-portal/internal/oauth"
	"auth-portal/internal/service"
	"auth-portal/internal/session"
)

// Client-facing failure messages. Deliberately uniform: internal outcome
// variants (username vs password mismatch, invalid vs expired token) must
// never be distinguishable from a response.
const (
	msgLoginOK           = "Authentication successful"
	msgTokenOK           = "Token is valid"
	msgMissingFields     = "Username and password are required"
	msgInvalidCredential = "Invalid username or password"
	msgNoToken           = "No token provided"
	msgInvalidToken      = "Invalid token"
	msgServerError       = "Server error"
)

const (
	stateCookie   = "oauth_state"
	sessionCookie = "session_id"
)

// Handler wires HTTP routes to the auth service. Depending on the deployment
// mode only one of the two route sets is registered, so the unused
// dependencies may be nil.
type Handler struct {
	auth       service.AuthService
	sessions   session.Store
	provider   *oauth.Client
	sessionTTL time.Duration
	logger     *logrus.Logger
}

func NewHandler(auth service.AuthService, sessions session.Store, provider *oauth.Client, sessionTTL time.Duration, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:       auth,
		sessions:   sessions,
		provider:   provider,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// RegisterTokenRoutes exposes the bearer-token API.
func (h *Handler) RegisterTokenRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/login", h.login)
		api.POST("/auth/verify", h.verify)
		api.GET("/health", h.health)
	}
}

// RegisterGitHubRoutes exposes the OAuth redirect flow with server-side sessions.
func (h *Handler) RegisterGitHubRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/", h.index)
	router.GET("/auth/github", h.githubRedirect)
	router.GET("/auth/github/callback", h.githubCallback)
	router.GET("/profile", h.profile)
	router.GET("/logout", h.logout)
	router.GET("/api/health", h.health)
}

// RecoveryMiddleware guarantees the documented 500 shape for panics instead of
// an empty body; the detail goes to the server log only.
func RecoveryMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorf("panic recovered: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": msgServerError,
		})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msgMissingFields})
		return
	}

	signed, username, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msgMissingFields})
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.WithField("username", req.Username).Info("login rejected: invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgInvalidCredential})
		default:
			h.logger.WithError(err).Error("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": msgServerError})
		}
		return
	}

	h.logger.WithField("username", username).Info("login successful")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  msgLoginOK,
		"token":    signed,
		"username": username,
	})
}

func (h *Handler) verify(c *gin.Context) {
	tokenString := bearerToken(c.GetHeader("Authorization"))

	claims, err := h.auth.VerifySession(c.Request.Context(), tokenString)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoToken):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgNoToken})
		case errors.Is(err, service.ErrTokenExpired):
			h.logger.Info("verify rejected: token expired")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgInvalidToken})
		default:
			h.logger.Info("verify rejected: invalid token")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgInvalidToken})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msgTokenOK,
		"data":    claims,
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`<a href="/auth/github">Sign in with GitHub</a>`))
}

func (h *Handler) githubRedirect(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusFound, h.provider.AuthURL(state))
}

func (h *Handler) githubCallback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		h.logger.Warn("github callback: state mismatch")
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		h.logger.Warn("github callback: missing code")
		c.Redirect(http.StatusFound, "/")
		return
	}

	profile, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.WithError(err).Warn("github callback: exchange failed")
		c.Redirect(http.StatusFound, "/")
		return
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(h.sessionTTL),
	}
	if err := h.sessions.Create(c.Request.Context(), sess); err != nil {
		h.logger.WithError(err).Error("github callback: create session")
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.SetCookie(sessionCookie, sess.ID, int(h.sessionTTL/time.Second), "/", "", false, true)
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) profile(c *gin.Context) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			h.logger.WithError(err).Error("load session")
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", sess.Profile)
}

func (h *Handler) logout(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
			h.logger.WithError(err).Warn("logout: delete session")
		}
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
