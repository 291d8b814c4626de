package complaints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryCreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	complaint, err := repo.Create(ctx, &CreateComplaintRequest{
		UserID:      "user-1",
		Description: "internet down for three days",
		Category:    "connectivity",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, StatusOpen, complaint.Status)

	got, err := repo.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, "internet down for three days", got.Description)
}

func TestInMemoryRepositoryValidation(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Create(context.Background(), &CreateComplaintRequest{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrMissingDescription)
}

func TestInMemoryRepositoryNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.MarkReplied(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryRepositoryMarkReplied(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	complaint, err := repo.Create(ctx, &CreateComplaintRequest{Description: "no picture on tv"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkReplied(ctx, complaint.ID))

	got, err := repo.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, got.Status)
}
