package csvfile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logbook/backend/internal/csvfile"
	"logbook/backend/internal/snowflake"
)

func init() {
	if err := snowflake.Init(1); err != nil {
		panic(err)
	}
}

func TestParse_BasicDocument(t *testing.T) {
	text := "date,entry_text\n2024-01-01,\"Fixed, it\"\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Fixed, it", entries[0].Content)
	require.Equal(t, "2024-01-01T00:00:00Z", entries[0].Date)
	require.NotEmpty(t, entries[0].ID)
}

func TestParse_TicketFromTags(t *testing.T) {
	text := "date,entry_text,tags\n2024-01-01,\"Fixed, it\",12 345 678\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "12345678", entries[0].TicketNumber, "ticket digits are normalized")
}

func TestParse_TicketFromContent(t *testing.T) {
	text := "date,content\n2024-01-01,Called about Ticket #483 921 007 again\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Equal(t, "483921007", entries[0].TicketNumber)
}

func TestParse_TagsWinOverContent(t *testing.T) {
	text := "date,content,tags\n2024-01-01,mentions ticket 111111,222222\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Equal(t, "222222", entries[0].TicketNumber)
}

func TestParse_ShortTagsRunIsNotATicket(t *testing.T) {
	// Fewer than six digits in tags does not look like a ticket.
	text := "date,content,tags\n2024-01-01,plain note,12345\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Empty(t, entries[0].TicketNumber)
}

func TestParse_HeaderAliases(t *testing.T) {
	for _, header := range []string{
		"created_at,note",
		"Date,Text",
		"entry_date,content",
	} {
		entries, err := csvfile.Parse(header + "\n2024-01-01,hello\n")
		require.NoError(t, err, "header %q", header)
		require.Len(t, entries, 1, "header %q", header)
		require.Equal(t, "hello", entries[0].Content)
	}
}

func TestParse_UnresolvedSchema(t *testing.T) {
	_, err := csvfile.Parse("foo,bar\n1,2\n")
	require.ErrorIs(t, err, csvfile.ErrUnresolvedSchema)

	// A date column alone is not enough.
	_, err = csvfile.Parse("date,mystery\n2024-01-01,x\n")
	require.ErrorIs(t, err, csvfile.ErrUnresolvedSchema)
}

func TestParse_Empty(t *testing.T) {
	_, err := csvfile.Parse("")
	require.ErrorIs(t, err, csvfile.ErrEmpty)

	// A lone header has no data rows.
	_, err = csvfile.Parse("date,content\n")
	require.ErrorIs(t, err, csvfile.ErrEmpty)
}

func TestParse_SkipsShortRows(t *testing.T) {
	text := "date,content\n2024-01-01,kept\nonly-one-field\n2024-01-02,also kept\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "kept", entries[0].Content)
	require.Equal(t, "also kept", entries[1].Content)
}

func TestParse_BadDateFallsBackToNow(t *testing.T) {
	text := "date,content\nnot a date,note\n"

	before := time.Now().UTC().Add(-time.Minute)
	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	parsed, err := time.Parse(time.RFC3339, entries[0].Date)
	require.NoError(t, err)
	require.True(t, parsed.After(before), "fallback date should be recent")
}

func TestParse_QuotedFieldWithEscapedQuote(t *testing.T) {
	text := "date,content\n2024-01-01,\"she said \"\"go\"\"\"\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Equal(t, `she said "go"`, entries[0].Content)
}

func TestParse_CRLFAndDateFormats(t *testing.T) {
	text := "date,content\r\n2024/01/05,slash\r\n\"Jan 6, 2024\",written\r\n"

	entries, err := csvfile.Parse(text)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "2024-01-05T00:00:00Z", entries[0].Date)
	require.Equal(t, "2024-01-06T00:00:00Z", entries[1].Date)
}
