package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/resumehub/resumehub/internal/mailer"
	"github.com/resumehub/resumehub/internal/models"
	"github.com/resumehub/resumehub/pkg/logger"
)

var (
	// ErrMissingFields is returned when a link request lacks email or name.
	ErrMissingFields = errors.New("email and name are required")

	// ErrInvalidOrExpiredToken covers every failed redemption: unknown token,
	// expired token, already-consumed token. Callers get no finer detail.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrNotFound is returned when a user record no longer exists.
	ErrNotFound = errors.New("user not found")
)

// linkTokenBytes gives 256 bits of entropy; the emailed token is the hex form.
const linkTokenBytes = 32

// Service implements the magic-link flow: issuing one-time login links and
// redeeming them. The Mailer is an injected dependency so tests can record
// outbound email instead of sending it.
type Service struct {
	repo        Repository
	mail        mailer.Mailer
	frontendURL string
	linkTTL     time.Duration
	now         func() time.Time
}

func NewService(repo Repository, mail mailer.Mailer, frontendURL string, linkTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		linkTTL:     linkTTL,
		now:         time.Now,
	}
}

// RequestLink mints a fresh one-time token for the given email, persisting it
// before attempting delivery. A new request always overwrites the prior
// token, so an earlier unredeemed link becomes unusable immediately.
// Email-send failure is surfaced to the caller; the token stays persisted
// until its natural expiry, and re-requesting simply overwrites it.
func (s *Service) RequestLink(ctx context.Context, email, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return ErrMissingFields
	}

	token, err := newLinkToken()
	if err != nil {
		return fmt.Errorf("generate link token: %w", err)
	}
	expires := s.now().UTC().Add(s.linkTTL)

	u, err := s.repo.UpsertLink(ctx, email, name, token, expires)
	if err != nil {
		return fmt.Errorf("persist link token: %w", err)
	}

	link := fmt.Sprintf("%s/auth/verify?token=%s", s.frontendURL, token)
	subject, body, err := mailer.MagicLinkEmail(u.Name, link, s.linkTTL)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, u.Email, subject, body); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}
	logger.Debugf("magic link issued for %s (expires %s)", u.Email, expires.Format(time.RFC3339))
	return nil
}

// Redeem consumes a one-time token and returns the verified user. The
// repository performs the match-and-clear as a single conditional update, so
// of two concurrent redemptions of one token exactly one succeeds and the
// other gets ErrInvalidOrExpiredToken.
func (s *Service) Redeem(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	u, err := s.repo.RedeemLink(ctx, token, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("redeem link: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidOrExpiredToken
	}
	return u, nil
}

// GetByID returns the user or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// BootstrapAdmin creates the user as an administrator or promotes an existing
// one. This is the only path that elevates a role.
func (s *Service) BootstrapAdmin(ctx context.Context, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, ErrMissingFields
	}
	return s.repo.UpsertRole(ctx, email, name, models.RoleAdmin)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

// SearchIDs resolves a free-text query to matching user IDs.
func (s *Service) SearchIDs(ctx context.Context, q string) ([]string, error) {
	return s.repo.SearchIDs(ctx, q)
}

func newLinkToken() (string, error) {
	b := make([]byte, linkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
