package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumehub/resumehub/internal/config"
	"github.com/resumehub/resumehub/internal/users"
	"github.com/resumehub/resumehub/pkg/logger"
	"github.com/resumehub/resumehub/pkg/middleware"
)

// BootstrapRequest is the body of POST /admin/bootstrap.
type BootstrapRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// AdminHandler serves administrative user management.
type AdminHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
}

func NewAdminHandler(cfg *config.Config, u *users.Service) *AdminHandler {
	return &AdminHandler{cfg: cfg, usersSvc: u}
}

// Register routes under /admin
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/admin")
	a.POST("/bootstrap", h.Bootstrap)

	auth := middleware.Auth(h.cfg.JWT.Secret)
	a.GET("/users", auth, middleware.RequireAdmin(), h.Users)
}

// Bootstrap creates or promotes an administrator account. It is meant for
// initial setup and local development and is refused outright in production;
// there every role change must go through an existing admin and a deploy.
func (h *AdminHandler) Bootstrap(c *gin.Context) {
	if h.cfg.Server.Environment == "production" {
		c.JSON(http.StatusForbidden, gin.H{"error": "bootstrap is disabled in production"})
		return
	}

	var req BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and name are required"})
		return
	}

	u, err := h.usersSvc.BootstrapAdmin(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, users.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("admin bootstrap failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bootstrap failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin ready", "user": u.Summary()})
}

// Users lists every account. Admin only.
func (h *AdminHandler) Users(c *gin.Context) {
	list, err := h.usersSvc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("user list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "total": len(list)})
}
