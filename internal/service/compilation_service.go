package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"logbook/backend/internal/logger"
	"logbook/backend/internal/model"
	"logbook/backend/internal/repository"
	"logbook/backend/internal/snowflake"
)

// CompilationService merges all entries sharing a ticket number into one
// chronological entry and retires the originals. Destructive: the source
// entries cannot be split back apart afterwards.
type CompilationService interface {
	// Compile returns the compiled entry and true, or the zero entry and
	// false when fewer than two entries carry the ticket number (in which
	// case nothing changes).
	Compile(ctx context.Context, ticketNumber string) (model.Entry, bool)
}

type compilationService struct {
	entries repository.EntryRepository
}

func NewCompilationService(entries repository.EntryRepository) CompilationService {
	return &compilationService{entries: entries}
}

func (s *compilationService) Compile(ctx context.Context, ticketNumber string) (model.Entry, bool) {
	var sources []model.Entry
	for _, e := range s.entries.Snapshot(ctx) {
		if e.TicketNumber != "" && e.TicketNumber == ticketNumber {
			sources = append(sources, e)
		}
	}
	if len(sources) < 2 {
		return model.Entry{}, false
	}

	// The compiled narrative reads oldest first, the inverse of the
	// repository's normal order.
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].SortTime().Before(sources[j].SortTime())
	})

	blocks := make([]string, len(sources))
	for i, source := range sources {
		blocks[i] = fmt.Sprintf("### %s\n\n%s", blockHeader(source), source.Content)
	}
	latest := sources[len(sources)-1]

	for _, source := range sources[:len(sources)-1] {
		if source.ImageURL != "" {
			logger.Debug("compilation dropping earlier image", "module", "service", "action", "compile", "resource", "entry", "result", "ok", "id", source.ID)
		}
	}

	compiled := model.Entry{
		ID:           snowflake.NextID(),
		Date:         latest.Date,
		Content:      strings.Join(blocks, "\n\n"),
		TicketNumber: ticketNumber,
		ImageURL:     latest.ImageURL,
	}

	removeIDs := make([]string, len(sources))
	for i, source := range sources {
		removeIDs[i] = source.ID
	}
	s.entries.Replace(ctx, removeIDs, compiled)

	logger.Info("ticket compiled", "module", "service", "action", "compile", "resource", "entry", "result", "ok", "ticket", ticketNumber, "absorbed", len(sources), "id", compiled.ID)
	return compiled, true
}

// blockHeader renders the human-readable timestamp that precedes each
// source entry's content. Unparseable dates fall back to the raw string.
func blockHeader(e model.Entry) string {
	t := e.SortTime()
	if t.IsZero() {
		return e.Date
	}
	return t.Format("January 2, 2006 15:04")
}
