package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resumehub/resumehub/internal/config"
	"github.com/resumehub/resumehub/internal/sessions"
	"github.com/resumehub/resumehub/internal/tokens"
	"github.com/resumehub/resumehub/internal/users"
	"github.com/resumehub/resumehub/pkg/logger"
	"github.com/resumehub/resumehub/pkg/metrics"
	"github.com/resumehub/resumehub/pkg/middleware"
)

// RequestLinkRequest is the body of POST /auth/request-link.
type RequestLinkRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// AuthHandler serves the magic-link login flow.
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/request-link", h.RequestLink)
	a.GET("/verify", h.Verify)

	auth := middleware.Auth(h.cfg.JWT.Secret)
	a.GET("/me", auth, h.Me)
	a.POST("/logout", auth, h.Logout)
}

// RequestLink issues a one-time login link. The success response is the same
// whether the email belonged to an existing account or a new one.
func (h *AuthHandler) RequestLink(c *gin.Context) {
	var req RequestLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and name are required"})
		return
	}

	err := h.usersSvc.RequestLink(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, users.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("magic link request failed: %v", err)
		metrics.EmailsSent.WithLabelValues("magic_link", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send login link"})
		return
	}
	metrics.MagicLinksIssued.Inc()
	metrics.EmailsSent.WithLabelValues("magic_link", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Login link sent! Check your email."})
}

// Verify redeems a one-time token and returns a session token plus the user.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	u, err := h.usersSvc.Redeem(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, users.ErrInvalidOrExpiredToken) {
			metrics.MagicLinksRedeemed.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
			return
		}
		logger.Errorf("magic link redemption failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	session, err := tokens.GenerateSessionToken(h.cfg, u, h.cfg.JWT.SessionTTL)
	if err != nil {
		logger.Errorf("session token generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	metrics.MagicLinksRedeemed.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"token":     session,
		"user":      u.Summary(),
		"expiresIn": int(h.cfg.JWT.SessionTTL.Seconds()),
	})
}

// Me returns the authenticated user from the store, so a deleted account is
// reported even while its session token is still within its lifetime.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logger.Errorf("user lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Logout revokes the current session token for its remaining lifetime. When
// no Redis revocation store is configured this still succeeds; the client
// simply discards its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	raw, _ := middleware.TokenFrom(c)
	if claims != nil && raw != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := sessions.RevokeSession(c.Request.Context(), raw, ttl); err != nil {
			logger.Errorf("session revocation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
