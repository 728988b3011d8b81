package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/resumehub/resumehub/internal/models"
)

// MemoryRepository is an in-memory Repository used for unit tests and local
// runs without MongoDB. The mutex is held across the whole match-and-clear in
// RedeemLink, which gives it the same one-winner guarantee as the Mongo
// conditional update.
type MemoryRepository struct {
	mu    sync.Mutex
	store map[string]*models.User // keyed by ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.User)}
}

func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.byEmail(email); u != nil {
		return copyUser(u), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertLink(ctx context.Context, email, name, token string, expires time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u := m.byEmail(email)
	if u == nil {
		u = &models.User{
			ID:        uuid.NewString(),
			Email:     email,
			Role:      models.RoleUser,
			CreatedAt: now,
		}
		m.store[u.ID] = u
	}
	u.Name = name
	tok := token
	exp := expires
	u.MagicLinkToken = &tok
	u.MagicLinkExpires = &exp
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (m *MemoryRepository) RedeemLink(ctx context.Context, token string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.MagicLinkToken == nil || *u.MagicLinkToken != token {
			continue
		}
		if u.MagicLinkExpires == nil || !u.MagicLinkExpires.After(now) {
			return nil, nil
		}
		u.MagicLinkToken = nil
		u.MagicLinkExpires = nil
		u.Verified = true
		t := now
		u.LastLoginAt = &t
		u.UpdatedAt = now
		return copyUser(u), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertRole(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u := m.byEmail(email)
	if u == nil {
		u = &models.User{
			ID:        uuid.NewString(),
			Email:     email,
			Verified:  true,
			CreatedAt: now,
		}
		m.store[u.ID] = u
	}
	u.Name = name
	u.Role = role
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0, len(m.store))
	for _, u := range m.store {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (m *MemoryRepository) SearchIDs(ctx context.Context, q string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(q)
	ids := []string{}
	for _, u := range m.store {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (m *MemoryRepository) byEmail(email string) *models.User {
	for _, u := range m.store {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.MagicLinkToken != nil {
		tok := *u.MagicLinkToken
		c.MagicLinkToken = &tok
	}
	if u.MagicLinkExpires != nil {
		exp := *u.MagicLinkExpires
		c.MagicLinkExpires = &exp
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}
