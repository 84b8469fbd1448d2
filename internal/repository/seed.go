package repository

import "logbook/backend/internal/model"

// seedEntries is the fixed example set used when the slot holds nothing
// usable. IDs are stable strings so reseeding is idempotent.
func seedEntries() []model.Entry {
	return []model.Entry{
		{
			ID:      "seed-3",
			Date:    "2024-01-03T18:30:00Z",
			Content: "Finished the quarterly report and sent it off. Celebrated with a long walk along the river.",
		},
		{
			ID:           "seed-2",
			Date:         "2024-01-02T09:15:00Z",
			Content:      "Called the insurance company about the water damage claim. They assigned ticket 483 921 007 and promised a callback within two days.",
			TicketNumber: "483921007",
		},
		{
			ID:      "seed-1",
			Date:    "2024-01-01T08:00:00Z",
			Content: "Welcome to your journal. Write anything here, tag entries with a ticket number to group them, and ask questions about what you wrote.",
		},
	}
}
