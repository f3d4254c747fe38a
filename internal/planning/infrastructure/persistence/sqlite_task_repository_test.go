package persistence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
	"github.com/jjohnson-47/nowqueue/internal/planning/infrastructure/persistence"
)

func newSQLiteRepo(t *testing.T) *persistence.SQLiteTaskRepository {
	t.Helper()
	repo, err := persistence.NewSQLiteTaskRepository(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteTaskRepository_SaveAndFind(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	due := time.Date(2025, 9, 20, 17, 0, 0, 0, time.UTC)
	original, err := task.Rehydrate(task.RehydrateParams{
		ID:         "MATH221-SYLLABUS",
		Course:     "MATH221",
		Title:      "Write the syllabus",
		Status:     task.StatusDoing,
		DueAt:      &due,
		EstMinutes: 45,
		Weight:     2.5,
		Category:   "setup",
		Anchor:     true,
		DependsOn:  []string{"MATH221-TEMPLATE"},
		CreatedAt:  time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, original))

	found, err := repo.FindByID(ctx, "MATH221-SYLLABUS")
	require.NoError(t, err)

	assert.Equal(t, original.ID(), found.ID())
	assert.Equal(t, original.Course(), found.Course())
	assert.Equal(t, original.Title(), found.Title())
	assert.Equal(t, task.StatusDoing, found.Status())
	require.NotNil(t, found.DueAt())
	assert.True(t, found.DueAt().Equal(due))
	assert.Equal(t, 45, found.EstMinutes())
	assert.Equal(t, 2.5, found.Weight())
	assert.Equal(t, "setup", found.Category())
	assert.True(t, found.Anchor())
	assert.Equal(t, []string{"MATH221-TEMPLATE"}, found.DependsOn())
}

func TestSQLiteTaskRepository_SaveIsUpsert(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := task.New("A", "MATH221", "first title")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, created))

	require.NoError(t, created.SetTitle("second title"))
	require.NoError(t, repo.Save(ctx, created))

	found, err := repo.FindByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "second title", found.Title())
}

func TestSQLiteTaskRepository_FindMissing(t *testing.T) {
	repo := newSQLiteRepo(t)

	_, err := repo.FindByID(context.Background(), "GHOST")
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestSQLiteTaskRepository_SnapshotIsIDOrdered(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	for _, id := range []string{"C", "A", "B"} {
		tk, err := task.New(id, "MATH221", "task "+id)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tk))
	}

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, snap.Len())

	ids := make([]string, 0, 3)
	for _, tk := range snap.Tasks() {
		ids = append(ids, tk.ID())
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestSQLiteTaskRepository_SnapshotEmptyStore(t *testing.T) {
	repo := newSQLiteRepo(t)

	snap, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
}
