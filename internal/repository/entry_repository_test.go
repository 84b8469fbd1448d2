package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"logbook/backend/internal/model"
	"logbook/backend/internal/repository"
	"logbook/backend/internal/repository/testutil"
	"logbook/backend/internal/snowflake"
)

func init() {
	if err := snowflake.Init(1); err != nil {
		panic(err)
	}
}

func newSeededRepo(t *testing.T, entries []model.Entry) repository.EntryRepository {
	t.Helper()
	db := testutil.NewTestDB(t)
	slot := repository.NewSlotRepository(db)

	payload, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, slot.Save(context.Background(), repository.EntriesSlotKey, payload))

	return repository.NewEntryRepository(context.Background(), slot)
}

func TestEntryRepository_SeedsWhenSlotAbsent(t *testing.T) {
	db := testutil.NewTestDB(t)
	slot := repository.NewSlotRepository(db)
	repo := repository.NewEntryRepository(context.Background(), slot)

	entries := repo.Snapshot(context.Background())
	require.NotEmpty(t, entries)
	require.Equal(t, "seed-3", entries[0].ID, "seed set is sorted newest first")
}

func TestEntryRepository_SeedsWhenSlotCorrupt(t *testing.T) {
	db := testutil.NewTestDB(t)
	slot := repository.NewSlotRepository(db)
	require.NoError(t, slot.Save(context.Background(), repository.EntriesSlotKey, []byte("{not json")))

	repo := repository.NewEntryRepository(context.Background(), slot)

	entries := repo.Snapshot(context.Background())
	require.NotEmpty(t, entries)
	require.Equal(t, "seed-3", entries[0].ID)
}

func TestEntryRepository_Add(t *testing.T) {
	repo := newSeededRepo(t, nil)
	ctx := context.Background()

	entry, ok := repo.Add(ctx, model.EntryDraft{Content: "first note", TicketNumber: "12345678"})
	require.True(t, ok)
	require.NotEmpty(t, entry.ID)
	require.NotEmpty(t, entry.Date)
	require.Equal(t, "first note", entry.Content)
	require.Equal(t, "12345678", entry.TicketNumber)

	entries := repo.Snapshot(ctx)
	require.Len(t, entries, 1)
	require.Equal(t, entry.ID, entries[0].ID)
}

func TestEntryRepository_Add_RejectsEmptyDraft(t *testing.T) {
	repo := newSeededRepo(t, nil)
	ctx := context.Background()

	_, ok := repo.Add(ctx, model.EntryDraft{Content: "   \n\t "})
	require.False(t, ok)
	require.Empty(t, repo.Snapshot(ctx))
}

func TestEntryRepository_Add_AllowsImageOnly(t *testing.T) {
	repo := newSeededRepo(t, nil)
	ctx := context.Background()

	entry, ok := repo.Add(ctx, model.EntryDraft{ImageURL: "/images/receipt.jpg"})
	require.True(t, ok)
	require.Empty(t, entry.Content)
	require.Equal(t, "/images/receipt.jpg", entry.ImageURL)
}

func TestEntryRepository_SortedDateDescending(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-03-01T10:00:00Z", Content: "middle"},
		{ID: "b", Date: "2024-06-01T10:00:00Z", Content: "newest"},
		{ID: "c", Date: "2024-01-01T10:00:00Z", Content: "oldest"},
	})

	entries := repo.Snapshot(context.Background())
	require.Equal(t, []string{"b", "a", "c"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestEntryRepository_UnparseableDateSortsLast(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "bad", Date: "sometime last week", Content: "x"},
		{ID: "good", Date: "2024-01-01T10:00:00Z", Content: "y"},
	})

	entries := repo.Snapshot(context.Background())
	require.Equal(t, "good", entries[0].ID)
	require.Equal(t, "bad", entries[1].ID)
}

func TestEntryRepository_Update(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "before"},
	})
	ctx := context.Background()

	content := "after"
	repo.Update(ctx, "a", model.EntryPatch{Content: &content})

	entries := repo.Snapshot(ctx)
	require.Equal(t, "after", entries[0].Content)
}

func TestEntryRepository_Update_MayEmptyContent(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "before"},
	})
	ctx := context.Background()

	empty := ""
	repo.Update(ctx, "a", model.EntryPatch{Content: &empty})

	entries := repo.Snapshot(ctx)
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].Content)
}

func TestEntryRepository_Update_UnknownIDIsNoop(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "before"},
	})
	ctx := context.Background()

	content := "after"
	repo.Update(ctx, "missing", model.EntryPatch{Content: &content})

	entries := repo.Snapshot(ctx)
	require.Equal(t, "before", entries[0].Content)
}

func TestEntryRepository_Update_DateChangeResorts(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-02-01T10:00:00Z", Content: "x"},
		{ID: "b", Date: "2024-01-01T10:00:00Z", Content: "y"},
	})
	ctx := context.Background()

	date := "2024-12-01T10:00:00Z"
	repo.Update(ctx, "b", model.EntryPatch{Date: &date})

	entries := repo.Snapshot(ctx)
	require.Equal(t, "b", entries[0].ID)
}

func TestEntryRepository_Delete(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "x"},
		{ID: "b", Date: "2024-01-02T10:00:00Z", Content: "y"},
	})
	ctx := context.Background()

	repo.Delete(ctx, "a")

	entries := repo.Snapshot(ctx)
	require.Len(t, entries, 1)
	require.Equal(t, "b", entries[0].ID)

	// unknown id is a no-op
	repo.Delete(ctx, "a")
	require.Len(t, repo.Snapshot(ctx), 1)
}

func TestEntryRepository_SnapshotIsACopy(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "x"},
	})
	ctx := context.Background()

	snapshot := repo.Snapshot(ctx)
	snapshot[0].Content = "mutated"

	require.Equal(t, "x", repo.Snapshot(ctx)[0].Content)
}

func TestEntryRepository_Merge_DedupAgainstExisting(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "kept"},
	})
	ctx := context.Background()

	result := repo.Merge(ctx, []model.Entry{
		{Date: "2024-01-01T10:00:00Z", Content: "kept"},
		{Date: "2024-01-02T10:00:00Z", Content: "new"},
	})

	require.Equal(t, 1, result.Imported)
	require.Equal(t, 1, result.Duplicates)
	require.Len(t, repo.Snapshot(ctx), 2)
}

func TestEntryRepository_Merge_DedupWithinBatch(t *testing.T) {
	repo := newSeededRepo(t, nil)
	ctx := context.Background()

	result := repo.Merge(ctx, []model.Entry{
		{Date: "2024-01-01T10:00:00Z", Content: "same"},
		{Date: "2024-01-01T10:00:00Z", Content: "same"},
	})

	require.Equal(t, 1, result.Imported)
	require.Equal(t, 1, result.Duplicates)
}

func TestEntryRepository_Merge_ExactStringMatchOnly(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "note"},
	})
	ctx := context.Background()

	// Same instant, different date string: not a duplicate.
	result := repo.Merge(ctx, []model.Entry{
		{Date: "2024-01-01T10:00:00+00:00", Content: "note"},
	})

	require.Equal(t, 1, result.Imported)
	require.Equal(t, 0, result.Duplicates)
}

func TestEntryRepository_Merge_Idempotent(t *testing.T) {
	repo := newSeededRepo(t, nil)
	ctx := context.Background()

	batch := []model.Entry{
		{ID: "x", Date: "2024-01-01T10:00:00Z", Content: "one"},
		{ID: "y", Date: "2024-01-02T10:00:00Z", Content: "two"},
	}

	first := repo.Merge(ctx, batch)
	require.Equal(t, 2, first.Imported)

	second := repo.Merge(ctx, batch)
	require.Equal(t, 0, second.Imported)
	require.Equal(t, 2, second.Duplicates)
	require.Len(t, repo.Snapshot(ctx), 2)
}

func TestEntryRepository_Merge_AssignsMissingIDs(t *testing.T) {
	repo := newSeededRepo(t, nil)
	ctx := context.Background()

	repo.Merge(ctx, []model.Entry{
		{Date: "2024-01-01T10:00:00Z", Content: "anonymous"},
	})

	entries := repo.Snapshot(ctx)
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].ID)
}

func TestEntryRepository_Replace(t *testing.T) {
	repo := newSeededRepo(t, []model.Entry{
		{ID: "a", Date: "2024-01-01T10:00:00Z", Content: "one", TicketNumber: "111"},
		{ID: "b", Date: "2024-01-02T10:00:00Z", Content: "two", TicketNumber: "111"},
		{ID: "c", Date: "2024-01-03T10:00:00Z", Content: "unrelated"},
	})
	ctx := context.Background()

	repo.Replace(ctx, []string{"a", "b"}, model.Entry{
		ID: "merged", Date: "2024-01-02T10:00:00Z", Content: "one+two", TicketNumber: "111",
	})

	entries := repo.Snapshot(ctx)
	require.Len(t, entries, 2)
	ids := []string{entries[0].ID, entries[1].ID}
	require.Contains(t, ids, "merged")
	require.Contains(t, ids, "c")
}

func TestEntryRepository_PersistsAcrossRestart(t *testing.T) {
	db := testutil.NewTestDB(t)
	slot := repository.NewSlotRepository(db)
	ctx := context.Background()

	repo := repository.NewEntryRepository(ctx, slot)
	entry, ok := repo.Add(ctx, model.EntryDraft{Content: "survives restart"})
	require.True(t, ok)

	reopened := repository.NewEntryRepository(ctx, slot)
	entries := reopened.Snapshot(ctx)

	found := false
	for _, e := range entries {
		if e.ID == entry.ID {
			found = true
		}
	}
	require.True(t, found)
}

// failingSlot accepts nothing; the repository should keep serving from
// memory regardless.
type failingSlot struct{}

func (failingSlot) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func (failingSlot) Save(ctx context.Context, key string, payload []byte) error {
	return errors.New("disk gone")
}

func TestEntryRepository_ToleratesPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEntryRepository(ctx, failingSlot{})

	before := len(repo.Snapshot(ctx))
	entry, ok := repo.Add(ctx, model.EntryDraft{Content: "kept in memory"})
	require.True(t, ok)

	entries := repo.Snapshot(ctx)
	require.Len(t, entries, before+1)
	require.Equal(t, entry.ID, entries[0].ID)
}
