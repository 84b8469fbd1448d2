package model

import (
	"strings"
	"time"
)

// Entry is one journal record. The JSON field names are the on-disk and
// wire format: the durable slot, the import format and the export format
// all share this exact shape.
type Entry struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Content      string `json:"content"`
	TicketNumber string `json:"ticketNumber,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// EntryDraft is the creation payload. ID and date are assigned by the
// repository.
type EntryDraft struct {
	Content      string
	TicketNumber string
	ImageURL     string
}

// EntryPatch is a partial update. Nil fields are left untouched.
// The image is not editable after creation.
type EntryPatch struct {
	Content      *string
	Date         *string
	TicketNumber *string
}

// DedupKey identifies an entry for import deduplication: the exact date
// string paired with the exact content string, no normalization.
type DedupKey struct {
	Date    string
	Content string
}

func (e Entry) DedupKey() DedupKey {
	return DedupKey{Date: e.Date, Content: e.Content}
}

// entryDateLayouts are tried in order when interpreting an entry date.
// Dates written by this application are always RFC3339; the tail of the
// list covers values that arrived through import.
var entryDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SortTime parses the entry date for ordering. Unparseable dates map to
// the zero time so they sort after everything else in the descending
// working set.
func (e Entry) SortTime() time.Time {
	for _, layout := range entryDateLayouts {
		if t, err := time.Parse(layout, e.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CalendarDate returns the entry's local calendar date as YYYY-MM-DD,
// the form used by answer citations.
func (e Entry) CalendarDate() string {
	t := e.SortTime()
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

// FormatTicketNumber renders a ticket number in 3-digit display groups,
// e.g. "12345678" becomes "12 345 678". Grouping starts from the right.
func FormatTicketNumber(ticket string) string {
	digits := strings.ReplaceAll(ticket, " ", "")
	if len(digits) <= 3 {
		return digits
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return strings.Join(groups, " ")
}
