package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logbook/backend/internal/model"
)

func TestSortTime(t *testing.T) {
	tests := []struct {
		date string
		want time.Time
	}{
		{"2024-01-05T12:30:00Z", time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC)},
		{"2024-01-05T12:30:00", time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC)},
		{"2024-01-05 12:30:00", time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC)},
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		e := model.Entry{Date: tt.date}
		require.True(t, tt.want.Equal(e.SortTime()), "date %q", tt.date)
	}
}

func TestSortTime_Unparseable(t *testing.T) {
	e := model.Entry{Date: "the other day"}
	require.True(t, e.SortTime().IsZero())
}

func TestCalendarDate_Unparseable(t *testing.T) {
	e := model.Entry{Date: "gibberish"}
	require.Empty(t, e.CalendarDate())
}

func TestDedupKey_ExactStrings(t *testing.T) {
	a := model.Entry{ID: "1", Date: "2024-01-05T12:00:00Z", Content: "note"}
	b := model.Entry{ID: "2", Date: "2024-01-05T12:00:00Z", Content: "note"}
	c := model.Entry{ID: "3", Date: "2024-01-05T12:00:00+00:00", Content: "note"}

	require.Equal(t, a.DedupKey(), b.DedupKey(), "id does not participate")
	require.NotEqual(t, a.DedupKey(), c.DedupKey(), "equivalent instants with different strings stay distinct")
}

func TestFormatTicketNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"12", "12"},
		{"123", "123"},
		{"1234", "1 234"},
		{"12345678", "12 345 678"},
		{"483921007", "483 921 007"},
		{"483 921 007", "483 921 007"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, model.FormatTicketNumber(tt.in), "input %q", tt.in)
	}
}
