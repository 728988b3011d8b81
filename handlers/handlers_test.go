package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/resumehub/resumehub/internal/config"
	"github.com/resumehub/resumehub/internal/models"
	"github.com/resumehub/resumehub/internal/resumes"
	"github.com/resumehub/resumehub/internal/storage"
	"github.com/resumehub/resumehub/internal/tokens"
	"github.com/resumehub/resumehub/internal/users"
)

var errSendFailed = errors.New("delivery failed")

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records outbound mail instead of sending it.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) last() (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

type testEnv struct {
	cfg       *config.Config
	router    *gin.Engine
	usersRepo *users.MemoryRepository
	usersSvc  *users.Service
	mail      *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT: config.JWTConfig{
			Secret:       "handlers-test-secret",
			SessionTTL:   time.Hour,
			MagicLinkTTL: 15 * time.Minute,
		},
		Email:  config.EmailConfig{FrontendURL: "http://localhost:3000"},
		Upload: config.UploadConfig{MaxBytes: 1 << 20},
	}

	mail := &fakeMailer{}
	usersRepo := users.NewMemoryRepository()
	usersSvc := users.NewService(usersRepo, mail, cfg.Email.FrontendURL, cfg.JWT.MagicLinkTTL)

	store, err := storage.NewDirStore(t.TempDir())
	require.NoError(t, err)
	resumesSvc := resumes.NewService(resumes.NewMemoryRepository(), store, cfg.Upload.MaxBytes)

	r := gin.New()
	api := r.Group("/api")
	NewAuthHandler(cfg, usersSvc).Register(api)
	NewResumeHandler(cfg, resumesSvc, usersSvc, mail).Register(api)
	NewAdminHandler(cfg, usersSvc).Register(api)
	RegisterSwagger(r)

	return &testEnv{cfg: cfg, router: r, usersRepo: usersRepo, usersSvc: usersSvc, mail: mail}
}

// createUser provisions a verified account through the link flow so it exists
// in the store, then returns it.
func (e *testEnv) createUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	ctx := context.Background()
	_, err := e.usersRepo.UpsertLink(ctx, email, name, "seed-"+email, time.Now().Add(time.Minute))
	require.NoError(t, err)
	u, err := e.usersRepo.RedeemLink(ctx, "seed-"+email, time.Now())
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (e *testEnv) createAdmin(t *testing.T, email, name string) *models.User {
	t.Helper()
	u, err := e.usersSvc.BootstrapAdmin(context.Background(), email, name)
	require.NoError(t, err)
	return u
}

func (e *testEnv) sessionFor(t *testing.T, u *models.User) string {
	t.Helper()
	raw, err := tokens.GenerateSessionToken(e.cfg, u, time.Hour)
	require.NoError(t, err)
	return raw
}

func (e *testEnv) do(method, path, bearer string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(method, path, bearer, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewReader([]byte(body))
	}
	return e.do(method, path, bearer, r, "application/json")
}

// pdfUpload builds a multipart body with one "resume" part typed as PDF.
func pdfUpload(t *testing.T, filename, content, mimeType string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="resume"; filename="`+filename+`"`)
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) uploadPDF(t *testing.T, bearer, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := pdfUpload(t, filename, content, "application/pdf")
	return e.do(http.MethodPost, "/api/resumes", bearer, body, ct)
}
