package ai_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"logbook/backend/internal/service/ai"
)

func TestGetAnswerPrompt(t *testing.T) {
	prompt := ai.GetAnswerPrompt("de-DE", "52.52000,13.40500", "2024-06-15")

	require.Contains(t, prompt, "<target_language>de-DE</target_language>")
	require.Contains(t, prompt, "<today>2024-06-15</today>")
	require.Contains(t, prompt, "<user_location>52.52000,13.40500</user_location>")
	require.Contains(t, prompt, "YYYY-MM-DD")
}

func TestGetAnswerPrompt_NoLocation(t *testing.T) {
	prompt := ai.GetAnswerPrompt("en-US", "", "2024-06-15")
	require.NotContains(t, prompt, "<user_location>")
}

func TestFormatEntryBlock(t *testing.T) {
	block := ai.FormatEntryBlock("2024-01-05T12:00:00Z", "fixed the leak", "483 921 007")
	require.Equal(t, "<entry date=\"2024-01-05T12:00:00Z\" ticket=\"483 921 007\">\nfixed the leak\n</entry>", block)
}

func TestFormatEntryBlock_NoTicket(t *testing.T) {
	block := ai.FormatEntryBlock("2024-01-05T12:00:00Z", "plain note", "")
	require.NotContains(t, block, "ticket=")
}
