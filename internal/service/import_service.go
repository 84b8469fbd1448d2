package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"logbook/backend/internal/csvfile"
	"logbook/backend/internal/logger"
	"logbook/backend/internal/model"
	"logbook/backend/internal/repository"
)

// ImportResult reports how a batch was reconciled.
type ImportResult struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Rejected   int      `json:"rejected"`
	Rejections []string `json:"rejections,omitempty"`
}

// ImportService reconciles externally sourced entry batches into the
// repository. A structurally invalid payload fails the whole import;
// element-level problems are tolerated per record.
type ImportService interface {
	ImportJSON(ctx context.Context, payload []byte) (ImportResult, error)
	ImportCSV(ctx context.Context, text string) (ImportResult, error)
}

type importService struct {
	entries repository.EntryRepository
}

func NewImportService(entries repository.EntryRepository) ImportService {
	return &importService{entries: entries}
}

// importRecord is the accepted JSON import shape. Unmarshaling each
// element separately keeps one malformed element from poisoning the
// batch and yields a per-record rejection reason.
type importRecord struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Content      string `json:"content"`
	TicketNumber string `json:"ticketNumber"`
	ImageURL     string `json:"imageUrl"`
}

func (s *importService) ImportJSON(ctx context.Context, payload []byte) (ImportResult, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(payload, &elements); err != nil {
		logger.Warn("json import payload invalid", "module", "service", "action", "import", "resource", "entry", "result", "failed", "error", err)
		return ImportResult{}, fmt.Errorf("%w: payload is not a JSON array", ErrInvalid)
	}

	var result ImportResult
	candidates := make([]model.Entry, 0, len(elements))
	for i, element := range elements {
		var record importRecord
		if err := json.Unmarshal(element, &record); err != nil {
			result.Rejected++
			result.Rejections = append(result.Rejections, fmt.Sprintf("element %d: malformed object", i))
			continue
		}
		if reason := validateRecord(record); reason != "" {
			result.Rejected++
			result.Rejections = append(result.Rejections, fmt.Sprintf("element %d: %s", i, reason))
			continue
		}
		candidates = append(candidates, model.Entry{
			ID:           record.ID,
			Date:         record.Date,
			Content:      record.Content,
			TicketNumber: record.TicketNumber,
			ImageURL:     record.ImageURL,
		})
	}

	merge := s.entries.Merge(ctx, candidates)
	result.Imported = merge.Imported
	result.Duplicates = merge.Duplicates

	logger.Info("json import completed", "module", "service", "action", "import", "resource", "entry", "result", "ok", "imported", result.Imported, "duplicates", result.Duplicates, "rejected", result.Rejected)
	return result, nil
}

func (s *importService) ImportCSV(ctx context.Context, text string) (ImportResult, error) {
	candidates, err := csvfile.Parse(text)
	if err != nil {
		if errors.Is(err, csvfile.ErrEmpty) || errors.Is(err, csvfile.ErrUnresolvedSchema) {
			logger.Warn("csv import rejected", "module", "service", "action", "import", "resource", "entry", "result", "failed", "error", err)
			return ImportResult{}, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
		}
		return ImportResult{}, err
	}

	merge := s.entries.Merge(ctx, candidates)
	result := ImportResult{Imported: merge.Imported, Duplicates: merge.Duplicates}

	logger.Info("csv import completed", "module", "service", "action", "import", "resource", "entry", "result", "ok", "imported", result.Imported, "duplicates", result.Duplicates)
	return result, nil
}

func validateRecord(record importRecord) string {
	if strings.TrimSpace(record.Date) == "" {
		return "missing date"
	}
	if record.Content == "" && record.ImageURL == "" {
		return "missing content"
	}
	return ""
}
