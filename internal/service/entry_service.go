package service

import (
	"context"
	"encoding/json"
	"fmt"

	"logbook/backend/internal/logger"
	"logbook/backend/internal/model"
	"logbook/backend/internal/repository"
)

// EntryService exposes the journal to the handlers: CRUD, duplication
// and export. Ordering and persistence are the repository's contract;
// this layer adds validation and the export encoding.
type EntryService interface {
	List(ctx context.Context) []model.Entry
	GetByID(ctx context.Context, id string) (model.Entry, error)
	Create(ctx context.Context, draft model.EntryDraft) (model.Entry, error)
	Update(ctx context.Context, id string, patch model.EntryPatch)
	Delete(ctx context.Context, id string)
	// Duplicate creates a new entry carrying the source's content, ticket
	// number and image, with a fresh id and the current time as its date.
	Duplicate(ctx context.Context, id string) (model.Entry, error)
	// Export renders the current snapshot as a pretty-printed JSON array.
	Export(ctx context.Context) ([]byte, error)
}

type entryService struct {
	entries repository.EntryRepository
}

func NewEntryService(entries repository.EntryRepository) EntryService {
	return &entryService{entries: entries}
}

func (s *entryService) List(ctx context.Context) []model.Entry {
	return s.entries.Snapshot(ctx)
}

func (s *entryService) GetByID(ctx context.Context, id string) (model.Entry, error) {
	for _, e := range s.entries.Snapshot(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Entry{}, ErrNotFound
}

func (s *entryService) Create(ctx context.Context, draft model.EntryDraft) (model.Entry, error) {
	entry, ok := s.entries.Add(ctx, draft)
	if !ok {
		return model.Entry{}, ErrInvalid
	}
	logger.Info("entry created", "module", "service", "action", "create", "resource", "entry", "result", "ok", "id", entry.ID)
	return entry, nil
}

func (s *entryService) Update(ctx context.Context, id string, patch model.EntryPatch) {
	s.entries.Update(ctx, id, patch)
}

func (s *entryService) Delete(ctx context.Context, id string) {
	s.entries.Delete(ctx, id)
}

func (s *entryService) Duplicate(ctx context.Context, id string) (model.Entry, error) {
	source, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Entry{}, err
	}

	copied, ok := s.entries.Add(ctx, model.EntryDraft{
		Content:      source.Content,
		TicketNumber: source.TicketNumber,
		ImageURL:     source.ImageURL,
	})
	if !ok {
		return model.Entry{}, ErrInvalid
	}
	logger.Info("entry duplicated", "module", "service", "action", "create", "resource", "entry", "result", "ok", "source", id, "id", copied.ID)
	return copied, nil
}

func (s *entryService) Export(ctx context.Context) ([]byte, error) {
	snapshot := s.entries.Snapshot(ctx)
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	logger.Info("export completed", "module", "service", "action", "export", "resource", "entry", "result", "ok", "count", len(snapshot))
	return payload, nil
}
