package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/acadex/acadex-api/internal/models"
)

func TestActivityLogRepositoryPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	user := createFaculty(t, db, "audit@example.com")

	for i := 0; i < 5; i++ {
		entry := models.ActivityLog{
			UserID:   user.ID,
			Action:   "COURSE_CREATE",
			Metadata: datatypes.JSONMap{"index": i},
		}
		require.NoError(t, repo.Create(context.Background(), &entry))
	}

	entries, total, err := repo.ListByUser(context.Background(), user.ID, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, entries, 2)

	lastPage, total, err := repo.ListByUser(context.Background(), user.ID, 3, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, lastPage, 1)
}

func TestActivityLogRepositoryScopesToUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	alice := createFaculty(t, db, "alice.audit@example.com")
	bob := createFaculty(t, db, "bob.audit@example.com")

	require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{UserID: alice.ID, Action: "LOGIN", Metadata: datatypes.JSONMap{}}))
	require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{UserID: bob.ID, Action: "LOGIN", Metadata: datatypes.JSONMap{}}))

	entries, total, err := repo.ListByUser(context.Background(), alice.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	require.Equal(t, alice.ID, entries[0].UserID)
}
