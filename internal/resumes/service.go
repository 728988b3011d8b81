package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/resumehub/resumehub/internal/storage"
	"github.com/resumehub/resumehub/pkg/logger"
)

var (
	ErrInvalidFile   = errors.New("only PDF files are accepted")
	ErrFileTooLarge  = errors.New("file exceeds the upload size limit")
	ErrEmptyFile     = errors.New("uploaded file is empty")
	ErrInvalidStatus = errors.New("unknown review status")
	ErrInvalidScore  = errors.New("score must be between 0 and 100")
)

// Service owns the resume lifecycle: upload, listing, review and deletion.
// The backing object store and record repository are kept consistent by
// writing the object first and rolling it back when the record insert fails.
type Service struct {
	repo     Repository
	store    storage.ObjectStore
	maxBytes int64
	now      func() time.Time
}

func NewService(repo Repository, store storage.ObjectStore, maxBytes int64) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Upload validates the file, stores its bytes under a generated object key
// and records the submission as pending.
func (s *Service) Upload(ctx context.Context, userID, originalName, mimeType string, size int64, r io.Reader) (*Resume, error) {
	if mimeType != "application/pdf" || !strings.HasSuffix(strings.ToLower(originalName), ".pdf") {
		return nil, ErrInvalidFile
	}
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	key := uuid.NewString() + ".pdf"
	if err := s.store.Upload(ctx, key, r, size, mimeType); err != nil {
		return nil, fmt.Errorf("store resume object: %w", err)
	}

	res := &Resume{
		ID:           uuid.NewString(),
		UserID:       userID,
		OriginalName: originalName,
		FileName:     key,
		FileSize:     size,
		MimeType:     mimeType,
		Status:       StatusPending,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			logger.Warnf("orphaned object %s after failed insert: %v", key, derr)
		}
		return nil, fmt.Errorf("create resume record: %w", err)
	}
	return res, nil
}

// ListMine returns the caller's submissions, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]*Resume, error) {
	return s.repo.ListByUser(ctx, userID)
}

// List returns a page of submissions matching the filter plus the total
// match count.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Resume, int64, error) {
	return s.repo.List(ctx, f)
}

// Get returns a single resume or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Resume, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	return res, nil
}

// Open returns the resume record together with a reader over its stored
// bytes. The caller must close the reader.
func (s *Service) Open(ctx context.Context, id string) (*Resume, io.ReadCloser, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Download(ctx, res.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open resume object: %w", err)
	}
	return res, rc, nil
}

// Review records an admin decision and returns the updated resume along with
// the status it had before, so callers can tell whether it changed.
func (s *Service) Review(ctx context.Context, id, reviewerID string, status Status, score *int, notes *string, tags *[]string) (*Resume, Status, error) {
	if !status.Valid() {
		return nil, "", ErrInvalidStatus
	}
	if score != nil && (*score < 0 || *score > 100) {
		return nil, "", ErrInvalidScore
	}

	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	updated, err := s.repo.ApplyReview(ctx, id, ReviewUpdate{
		Status:     status,
		ReviewerID: reviewerID,
		ReviewedAt: s.now().UTC(),
		Score:      score,
		Notes:      notes,
		Tags:       tags,
	})
	if err != nil {
		return nil, "", err
	}
	if updated == nil {
		return nil, "", ErrNotFound
	}
	return updated, before.Status, nil
}

// Delete removes the stored object and then the record. A missing object is
// tolerated so a record with a lost file can still be cleaned up.
func (s *Service) Delete(ctx context.Context, id string) error {
	res, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, res.FileName); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete resume object: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
