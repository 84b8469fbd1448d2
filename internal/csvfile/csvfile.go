// Package csvfile parses delimited journal exports into entry records.
//
// The recognized schema is a header row followed by data rows, with the
// semantic columns located by header-name heuristics rather than fixed
// positions. Parsing is deliberately reject-rather-than-guess: when the
// date or content column cannot be resolved the whole document is
// refused, so data is never silently assigned to the wrong field.
package csvfile

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"logbook/backend/internal/logger"
	"logbook/backend/internal/model"
	"logbook/backend/internal/snowflake"
)

var (
	// ErrEmpty is returned when the document has no header or no data rows.
	ErrEmpty = errors.New("csv: no data rows")
	// ErrUnresolvedSchema is returned when the date or content column
	// cannot be located in the header.
	ErrUnresolvedSchema = errors.New("csv: cannot resolve date and content columns")
)

// contentHeaders are exact matches for the content column role.
var contentHeaders = []string{"entry_text", "text", "content", "note"}

// tagsTicketPattern matches a run of 6+ digits possibly interspersed
// with single spaces, e.g. "483 921 007".
var tagsTicketPattern = regexp.MustCompile(`\d(?: ?\d){5,}`)

// contentTicketPattern matches an inline ticket marker such as
// "Ticket #12345" or "ticket 12 345".
var contentTicketPattern = regexp.MustCompile(`(?i)ticket[ #]*\d[\d ]*`)

// rowDateLayouts are tried in order against the raw date field.
var rowDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

type columns struct {
	date    int
	content int
	tags    int // -1 when absent
}

// Parse converts CSV text into entry records. Every row gets a freshly
// generated id; the source data carries none that the schema recognizes.
// Short rows are skipped, unparseable dates fall back to the current
// time, and both are row-level conditions that do not fail the batch.
func Parse(text string) ([]model.Entry, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, ErrEmpty
	}

	cols, ok := resolveColumns(splitFields(lines[0]))
	if !ok {
		return nil, ErrUnresolvedSchema
	}

	required := cols.date
	if cols.content > required {
		required = cols.content
	}

	var entries []model.Entry
	for i, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) <= required {
			continue
		}

		tags := ""
		if cols.tags >= 0 && cols.tags < len(fields) {
			tags = fields[cols.tags]
		}
		content := fields[cols.content]

		date, ok := parseRowDate(fields[cols.date])
		if !ok {
			logger.Warn("csv row date unparseable, using current time", "module", "csvfile", "action", "parse", "resource", "entry", "result", "ok", "row", i+2)
		}

		entries = append(entries, model.Entry{
			ID:           snowflake.NextID(),
			Date:         date,
			Content:      content,
			TicketNumber: extractTicket(tags, content),
		})
	}
	return entries, nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	// Drop a trailing empty line left by a final newline.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// splitFields splits one CSV line on commas with RFC4180-style quoting:
// a field may be wrapped in double quotes, a doubled quote inside a
// quoted field is a literal quote, and commas inside quotes do not split.
func splitFields(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}
	fields = append(fields, field.String())
	return fields
}

// resolveColumns locates the semantic roles by header name. The date and
// content columns are mandatory; tags is optional.
func resolveColumns(header []string) (columns, bool) {
	cols := columns{date: -1, content: -1, tags: -1}
	for i, raw := range header {
		name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), `"`, ""))

		if cols.date < 0 && (strings.Contains(name, "date") || strings.Contains(name, "created")) {
			cols.date = i
		}
		if cols.content < 0 {
			for _, candidate := range contentHeaders {
				if name == candidate {
					cols.content = i
					break
				}
			}
		}
		if cols.tags < 0 && (strings.Contains(name, "tags") || strings.Contains(name, "label")) {
			cols.tags = i
		}
	}
	if cols.date < 0 || cols.content < 0 {
		return columns{}, false
	}
	return cols, true
}

// extractTicket pulls a best-effort ticket number out of the row, tags
// field first, then an inline "Ticket" marker in the content. The result
// is digits only.
func extractTicket(tags, content string) string {
	if match := tagsTicketPattern.FindString(tags); match != "" {
		return digitsOf(match)
	}
	if match := contentTicketPattern.FindString(content); match != "" {
		return digitsOf(match)
	}
	return ""
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// parseRowDate normalizes the raw field to RFC3339. The second return
// reports whether the raw value parsed; when it did not, the current
// time is returned as a known lossy fallback.
func parseRowDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range rowDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(time.RFC3339), true
		}
	}
	return time.Now().UTC().Format(time.RFC3339), false
}
