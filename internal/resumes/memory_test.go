package resumes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seedResume(t *testing.T, repo *MemoryRepository, id, userID string, status Status, uploadedAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &Resume{
		ID:           id,
		UserID:       userID,
		OriginalName: id + ".pdf",
		FileName:     id + "-obj.pdf",
		FileSize:     10,
		MimeType:     "application/pdf",
		Status:       status,
		UploadedAt:   uploadedAt,
	}))
}

func TestMemoryRepository_ListFilters(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	seedResume(t, repo, "r1", "u1", StatusPending, base)
	seedResume(t, repo, "r2", "u1", StatusApproved, base.Add(time.Hour))
	seedResume(t, repo, "r3", "u2", StatusPending, base.Add(2*time.Hour))

	all, total, err := repo.List(ctx, ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Equal(t, "r3", all[0].ID)
	require.Equal(t, "r1", all[2].ID)

	pending, total, err := repo.List(ctx, ListFilter{Status: StatusPending, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, pending, 2)

	scoped, total, err := repo.List(ctx, ListFilter{FilterUsers: true, UserIDs: []string{"u2"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "r3", scoped[0].ID)
}

func TestMemoryRepository_ApplyReview(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	seedResume(t, repo, "r1", "u1", StatusPending, time.Now().UTC())

	score := 50
	updated, err := repo.ApplyReview(ctx, "r1", ReviewUpdate{
		Status:     StatusNeedsRevision,
		ReviewerID: "admin1",
		ReviewedAt: time.Now().UTC(),
		Score:      &score,
	})
	require.NoError(t, err)
	require.Equal(t, StatusNeedsRevision, updated.Status)
	require.Equal(t, 50, *updated.Score)

	missing, err := repo.ApplyReview(ctx, "nope", ReviewUpdate{Status: StatusApproved})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	seedResume(t, repo, "r1", "u1", StatusPending, time.Now().UTC())

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	got.Status = StatusRejected
	got.Tags = append(got.Tags, "mutated")

	again, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, StatusPending, again.Status)
	require.Empty(t, again.Tags)
}
