package repository

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"logbook/backend/internal/logger"
	"logbook/backend/internal/model"
	"logbook/backend/internal/snowflake"
)

// MergeResult reports what a candidate batch amounted to after
// deduplication.
type MergeResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
}

// EntryRepository owns the canonical ordered collection of entries.
//
// The working set lives in memory and is written through as a whole to a
// durable slot on every mutation. Readers always see the collection
// sorted by date descending. Expected failure modes (missing id, empty
// dedup set) resolve to no-ops rather than errors; persistence failures
// are logged and the in-memory state stays authoritative for the session.
type EntryRepository interface {
	// Add creates a new entry from the draft. Returns false without
	// changing anything when the draft has neither content nor an image.
	Add(ctx context.Context, draft model.EntryDraft) (model.Entry, bool)
	// Update shallow-merges the patch into the entry with the given id.
	// No-op if the id is unknown. The patch is not re-validated: an
	// update may legally empty out the content.
	Update(ctx context.Context, id string, patch model.EntryPatch)
	// Delete removes the entry with the given id. No-op if unknown.
	Delete(ctx context.Context, id string)
	// Snapshot returns a point-in-time copy of all entries, sorted by
	// date descending, ties in stable order.
	Snapshot(ctx context.Context) []model.Entry
	// Merge reconciles a candidate batch into the collection. Candidates
	// whose (date, content) pair matches an existing entry, or an earlier
	// candidate in the same batch, are dropped as duplicates. Surviving
	// candidates without an id get a fresh one. One persistence write.
	Merge(ctx context.Context, candidates []model.Entry) MergeResult
	// Replace atomically removes the entries with the given ids and
	// inserts the replacement, with a single persistence write.
	Replace(ctx context.Context, removeIDs []string, replacement model.Entry)
}

type entryRepository struct {
	mu      sync.Mutex
	entries []model.Entry
	slot    SlotRepository
}

// NewEntryRepository rehydrates the working set from the durable slot.
// An absent, unreadable or unparseable slot falls back to the seed set.
func NewEntryRepository(ctx context.Context, slot SlotRepository) EntryRepository {
	r := &entryRepository{slot: slot}
	r.entries = r.load(ctx)
	sortEntries(r.entries)
	return r
}

func (r *entryRepository) load(ctx context.Context) []model.Entry {
	payload, err := r.slot.Load(ctx, EntriesSlotKey)
	if err != nil {
		logger.Warn("entry slot load failed", "module", "repository", "action", "load", "resource", "entry", "result", "failed", "error", err)
		return seedEntries()
	}
	if payload == nil {
		logger.Info("entry slot empty, seeding", "module", "repository", "action", "load", "resource", "entry", "result", "ok")
		return seedEntries()
	}

	var entries []model.Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		logger.Warn("entry slot unparseable, seeding", "module", "repository", "action", "load", "resource", "entry", "result", "failed", "error", err)
		return seedEntries()
	}
	logger.Info("entry slot loaded", "module", "repository", "action", "load", "resource", "entry", "result", "ok", "count", len(entries))
	return entries
}

// persist serializes the full collection into the slot. Failures are
// non-fatal: the in-memory state remains the source of truth.
func (r *entryRepository) persist(ctx context.Context) {
	payload, err := json.Marshal(r.entries)
	if err != nil {
		logger.Error("entry slot marshal failed", "module", "repository", "action", "save", "resource", "entry", "result", "failed", "error", err)
		return
	}
	if err := r.slot.Save(ctx, EntriesSlotKey, payload); err != nil {
		logger.Warn("entry slot save failed", "module", "repository", "action", "save", "resource", "entry", "result", "failed", "error", err)
	}
}

func (r *entryRepository) Add(ctx context.Context, draft model.EntryDraft) (model.Entry, bool) {
	if strings.TrimSpace(draft.Content) == "" && draft.ImageURL == "" {
		return model.Entry{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := model.Entry{
		ID:           snowflake.NextID(),
		Date:         time.Now().UTC().Format(time.RFC3339),
		Content:      draft.Content,
		TicketNumber: draft.TicketNumber,
		ImageURL:     draft.ImageURL,
	}
	r.entries = append([]model.Entry{entry}, r.entries...)
	sortEntries(r.entries)
	r.persist(ctx)
	return entry, true
}

func (r *entryRepository) Update(ctx context.Context, id string, patch model.EntryPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return
	}

	if patch.Content != nil {
		r.entries[idx].Content = *patch.Content
	}
	if patch.Date != nil {
		r.entries[idx].Date = *patch.Date
	}
	if patch.TicketNumber != nil {
		r.entries[idx].TicketNumber = *patch.TicketNumber
	}
	sortEntries(r.entries)
	r.persist(ctx)
}

func (r *entryRepository) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return
	}
	r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	r.persist(ctx)
}

func (r *entryRepository) Snapshot(ctx context.Context) []model.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]model.Entry, len(r.entries))
	copy(snapshot, r.entries)
	return snapshot
}

func (r *entryRepository) Merge(ctx context.Context, candidates []model.Entry) MergeResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[model.DedupKey]struct{}, len(r.entries)+len(candidates))
	for _, e := range r.entries {
		seen[e.DedupKey()] = struct{}{}
	}

	var result MergeResult
	var survivors []model.Entry
	for _, candidate := range candidates {
		key := candidate.DedupKey()
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		if candidate.ID == "" {
			candidate.ID = snowflake.NextID()
		}
		survivors = append(survivors, candidate)
		result.Imported++
	}

	if len(survivors) == 0 {
		return result
	}

	r.entries = append(survivors, r.entries...)
	sortEntries(r.entries)
	r.persist(ctx)
	return result
}

func (r *entryRepository) Replace(ctx context.Context, removeIDs []string, replacement model.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remove := make(map[string]struct{}, len(removeIDs))
	for _, id := range removeIDs {
		remove[id] = struct{}{}
	}

	kept := r.entries[:0]
	for _, e := range r.entries {
		if _, drop := remove[e.ID]; !drop {
			kept = append(kept, e)
		}
	}
	r.entries = append(kept, replacement)
	sortEntries(r.entries)
	r.persist(ctx)
}

func (r *entryRepository) indexOf(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// sortEntries orders the working set by date descending. The sort is
// stable so entries with equal or unparseable dates keep their relative
// order.
func sortEntries(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SortTime().After(entries[j].SortTime())
	})
}
