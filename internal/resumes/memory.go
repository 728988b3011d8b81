package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository used by tests and local
// development without Mongo.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]*Resume
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Resume)}
}

func copyResume(r *Resume) *Resume {
	c := *r
	if r.Score != nil {
		v := *r.Score
		c.Score = &v
	}
	if r.ReviewerID != nil {
		v := *r.ReviewerID
		c.ReviewerID = &v
	}
	if r.ReviewedAt != nil {
		v := *r.ReviewedAt
		c.ReviewedAt = &v
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	return &c
}

func (m *MemoryRepository) Create(ctx context.Context, r *Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Status == "" {
		r.Status = StatusPending
	}
	m.records[r.ID] = copyResume(r)
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return copyResume(r), nil
}

func (m *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Resume{}
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, copyResume(r))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryRepository) List(ctx context.Context, f ListFilter) ([]*Resume, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := map[string]bool{}
	for _, id := range f.UserIDs {
		allowed[id] = true
	}

	matched := []*Resume{}
	for _, r := range m.records {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.FilterUsers && !allowed[r.UserID] {
			continue
		}
		matched = append(matched, copyResume(r))
	}
	sortNewestFirst(matched)

	total := int64(len(matched))
	page, limit := normalizePage(f.Page, f.Limit)
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*Resume{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MemoryRepository) ApplyReview(ctx context.Context, id string, upd ReviewUpdate) (*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	r.Status = upd.Status
	reviewer := upd.ReviewerID
	r.ReviewerID = &reviewer
	reviewedAt := upd.ReviewedAt
	r.ReviewedAt = &reviewedAt
	if upd.Score != nil {
		v := *upd.Score
		r.Score = &v
	}
	if upd.Notes != nil {
		r.ReviewNotes = *upd.Notes
	}
	if upd.Tags != nil {
		r.Tags = append([]string(nil), *upd.Tags...)
	}
	return copyResume(r), nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func sortNewestFirst(rs []*Resume) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].UploadedAt.Equal(rs[j].UploadedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].UploadedAt.After(rs[j].UploadedAt)
	})
}
