package ai

import "fmt"

// GetAnswerPrompt returns the system prompt for answering questions
// about journal entries. location is an optional "lat,lon" pair used to
// ground location-aware questions; today anchors relative expressions
// like "last week".
func GetAnswerPrompt(language, location, today string) string {
	locationTag := ""
	if location != "" {
		locationTag = fmt.Sprintf("\n<user_location>%s</user_location>", location)
	}

	return fmt.Sprintf(`You are a personal journal assistant. Answer questions using ONLY the journal entries provided by the user.

<context>
<target_language>%s</target_language>
<today>%s</today>%s
</context>

<instructions>
1. You MUST answer in the language specified in <target_language>. Responses in other languages are invalid
2. Base every statement on the journal entries. If the entries do not contain the answer, say so plainly
3. When you reference an entry, cite its date in the exact form YYYY-MM-DD
4. If <user_location> is present, use it to interpret location-related questions
5. Interpret relative dates ("yesterday", "last month") against <today>
6. Be concise and factual. NEVER invent entries or dates
7. NO leading or trailing newlines
</instructions>`, language, today, locationTag)
}

// FormatEntryBlock renders one journal entry for the model context.
func FormatEntryBlock(date, content, ticket string) string {
	attrs := fmt.Sprintf("date=%q", date)
	if ticket != "" {
		attrs += fmt.Sprintf(" ticket=%q", ticket)
	}
	return fmt.Sprintf("<entry %s>\n%s\n</entry>", attrs, content)
}
