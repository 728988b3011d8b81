package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resumehub/resumehub/internal/access"
	"github.com/resumehub/resumehub/internal/config"
	"github.com/resumehub/resumehub/internal/mailer"
	"github.com/resumehub/resumehub/internal/models"
	"github.com/resumehub/resumehub/internal/resumes"
	"github.com/resumehub/resumehub/internal/users"
	"github.com/resumehub/resumehub/pkg/logger"
	"github.com/resumehub/resumehub/pkg/metrics"
	"github.com/resumehub/resumehub/pkg/middleware"
)

// ReviewRequest is the body of PUT /resumes/:id/review. Nil fields leave the
// stored value untouched.
type ReviewRequest struct {
	Status resumes.Status `json:"status" binding:"required"`
	Score  *int           `json:"score"`
	Notes  *string        `json:"notes"`
	Tags   *[]string      `json:"tags"`
}

// ResumeHandler serves upload, listing, review and download of resumes.
type ResumeHandler struct {
	cfg        *config.Config
	resumesSvc *resumes.Service
	usersSvc   *users.Service
	mail       mailer.Mailer
}

func NewResumeHandler(cfg *config.Config, r *resumes.Service, u *users.Service, m mailer.Mailer) *ResumeHandler {
	return &ResumeHandler{cfg: cfg, resumesSvc: r, usersSvc: u, mail: m}
}

// Register routes under /resumes
func (h *ResumeHandler) Register(rg *gin.RouterGroup) {
	auth := middleware.Auth(h.cfg.JWT.Secret)
	admin := middleware.RequireAdmin()

	r := rg.Group("/resumes", auth)
	r.POST("", h.Upload)
	r.GET("/mine", h.Mine)
	r.GET("", admin, h.List)
	r.GET("/:id", h.Get)
	r.GET("/:id/download", h.Download)
	r.PUT("/:id/review", admin, h.Review)
	r.DELETE("/:id", admin, h.Delete)
}

// Upload accepts a single PDF in the multipart field "resume".
func (h *ResumeHandler) Upload(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)

	fh, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		logger.Errorf("open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	defer f.Close()

	res, err := h.resumesSvc.Upload(c.Request.Context(), claims.UserID, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrInvalidFile), errors.Is(err, resumes.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, resumes.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Errorf("resume upload failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		}
		return
	}
	metrics.ResumesUploaded.Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "Resume uploaded successfully", "resume": res})
}

// Mine lists the caller's own submissions.
func (h *ResumeHandler) Mine(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	list, err := h.resumesSvc.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		logger.Errorf("list own resumes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resumes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumes": list})
}

// List is the admin view over all submissions: paginated, filterable by
// status and by free-text owner search.
func (h *ResumeHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := resumes.ListFilter{Page: page, Limit: limit}

	if status := c.Query("status"); status != "" {
		s := resumes.Status(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		filter.Status = s
	}

	if q := c.Query("search"); q != "" {
		ids, err := h.usersSvc.SearchIDs(c.Request.Context(), q)
		if err != nil {
			logger.Errorf("owner search failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		filter.FilterUsers = true
		filter.UserIDs = ids
	}

	list, total, err := h.resumesSvc.List(c.Request.Context(), filter)
	if err != nil {
		logger.Errorf("list resumes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resumes"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"resumes":     h.withOwners(c, list),
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// Get returns one submission with owner and reviewer identities attached.
// Owners see their own; admins see any.
func (h *ResumeHandler) Get(c *gin.Context) {
	res, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.detail(c, res))
}

// Download streams the stored PDF. Same access rule as Get.
func (h *ResumeHandler) Download(c *gin.Context) {
	res, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	rec, rc, err := h.resumesSvc.Open(c.Request.Context(), res.ID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
			return
		}
		logger.Errorf("resume download failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+rec.OriginalName+`"`)
	c.Header("Content-Type", rec.MimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Warnf("resume stream interrupted: %v", err)
	}
}

// Review records an admin decision and notifies the owner when the status
// actually changed. Notification failure never fails the review.
func (h *ResumeHandler) Review(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	updated, oldStatus, err := h.resumesSvc.Review(c.Request.Context(), c.Param("id"), claims.UserID, req.Status, req.Score, req.Notes, req.Tags)
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrInvalidStatus), errors.Is(err, resumes.ErrInvalidScore):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, resumes.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
		default:
			logger.Errorf("resume review failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
		}
		return
	}

	if updated.Status != oldStatus {
		h.notifyStatusChange(c, updated)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review saved", "resume": updated})
}

// Delete removes a submission and its stored file.
func (h *ResumeHandler) Delete(c *gin.Context) {
	err := h.resumesSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
			return
		}
		logger.Errorf("resume delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Resume deleted"})
}

// loadAuthorized fetches the resume and enforces the owner-or-admin rule,
// writing the error response itself when access is denied.
func (h *ResumeHandler) loadAuthorized(c *gin.Context) (*resumes.Resume, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	res, err := h.resumesSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
			return nil, false
		}
		logger.Errorf("resume lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, false
	}
	if !access.CanAccessResource(claims.UserID, claims.Role, res.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	return res, true
}

type resumeDetail struct {
	*resumes.Resume
	Owner    *models.Summary `json:"owner,omitempty"`
	Reviewer *models.Summary `json:"reviewer,omitempty"`
}

func (h *ResumeHandler) detail(c *gin.Context, res *resumes.Resume) resumeDetail {
	d := resumeDetail{Resume: res}
	if u, err := h.usersSvc.GetByID(c.Request.Context(), res.UserID); err == nil {
		s := u.Summary()
		d.Owner = &s
	}
	if res.ReviewerID != nil {
		if u, err := h.usersSvc.GetByID(c.Request.Context(), *res.ReviewerID); err == nil {
			s := u.Summary()
			d.Reviewer = &s
		}
	}
	return d
}

func (h *ResumeHandler) withOwners(c *gin.Context, list []*resumes.Resume) []resumeDetail {
	out := make([]resumeDetail, 0, len(list))
	for _, res := range list {
		out = append(out, h.detail(c, res))
	}
	return out
}

func (h *ResumeHandler) notifyStatusChange(c *gin.Context, res *resumes.Resume) {
	owner, err := h.usersSvc.GetByID(c.Request.Context(), res.UserID)
	if err != nil {
		logger.Warnf("status notification skipped, owner lookup failed: %v", err)
		return
	}
	subject, body, err := mailer.StatusEmail(owner.Name, string(res.Status), res.ReviewNotes, h.cfg.Email.FrontendURL+"/dashboard")
	if err != nil {
		logger.Warnf("status notification skipped: %v", err)
		return
	}
	if err := h.mail.Send(c.Request.Context(), owner.Email, subject, body); err != nil {
		metrics.EmailsSent.WithLabelValues("status_update", "error").Inc()
		logger.Warnf("status notification to %s failed: %v", owner.Email, err)
		return
	}
	metrics.EmailsSent.WithLabelValues("status_update", "ok").Inc()
}
