package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"logbook/backend/internal/logger"
	"logbook/backend/internal/model"
	"logbook/backend/internal/repository"
	"logbook/backend/internal/service/ai"
)

// Location is an optional geolocation hint supplied with a question.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Citation references journal entries by calendar date. Two entries on
// the same calendar day share a citation.
type Citation struct {
	Date     string   `json:"date"`
	EntryIDs []string `json:"entryIds"`
}

// Answer is the façade's reply to one question.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

// ChatMessage is one element of the sequential chat history.
type ChatMessage struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"` // "user" or "assistant"
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// citationPattern matches the YYYY-MM-DD dates the prompt instructs the
// model to cite.
var citationPattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

// AskService answers natural-language questions about the journal. The
// entry context is copied at call time: entries added, edited or deleted
// while a question is in flight do not alter that question's context.
type AskService interface {
	// Ask answers a question and appends the exchange to the history.
	// Provider failures come back as an apologetic answer, not an error;
	// only a missing AI configuration is reported as ErrAIConfig.
	Ask(ctx context.Context, question string, loc *Location) (Answer, error)
	// AskStream streams the answer text. The caller is expected to call
	// RecordExchange with the collected text once the stream ends.
	AskStream(ctx context.Context, question string, loc *Location) (<-chan string, <-chan error, error)
	// RecordExchange resolves citations for a finished answer and
	// appends the question/answer pair to the history.
	RecordExchange(ctx context.Context, question, answer string) Answer
	// History returns a copy of the sequential chat history.
	History() []ChatMessage
}

type askService struct {
	entries     repository.EntryRepository
	settings    repository.SettingsRepository
	rateLimiter *ai.RateLimiter

	mu      sync.Mutex
	history []ChatMessage
}

func NewAskService(
	entries repository.EntryRepository,
	settings repository.SettingsRepository,
	rateLimiter *ai.RateLimiter,
) AskService {
	return &askService{
		entries:     entries,
		settings:    settings,
		rateLimiter: rateLimiter,
	}
}

func (s *askService) Ask(ctx context.Context, question string, loc *Location) (Answer, error) {
	provider, systemPrompt, userContent, err := s.prepare(ctx, question, loc)
	if err != nil {
		return Answer{}, err
	}

	text, err := provider.Complete(ctx, systemPrompt, userContent)
	if err != nil {
		logger.Warn("ask failed", "module", "service", "action", "ask", "resource", "ai", "result", "failed", "provider", provider.Name(), "error", err)
		text = "Sorry, I could not reach the assistant to answer that. Please try again."
	}

	answer := s.RecordExchange(ctx, question, text)
	logger.Info("ask answered", "module", "service", "action", "ask", "resource", "ai", "result", "ok", "provider", provider.Name(), "citations", len(answer.Citations))
	return answer, nil
}

func (s *askService) AskStream(ctx context.Context, question string, loc *Location) (<-chan string, <-chan error, error) {
	provider, systemPrompt, userContent, err := s.prepare(ctx, question, loc)
	if err != nil {
		return nil, nil, err
	}

	textCh, errCh := provider.CompleteStream(ctx, systemPrompt, userContent)
	logger.Info("ask stream started", "module", "service", "action", "ask", "resource", "ai", "result", "ok", "provider", provider.Name())
	return textCh, errCh, nil
}

// prepare builds the provider and the prompt pair from a copy-on-call
// snapshot of the journal.
func (s *askService) prepare(ctx context.Context, question string, loc *Location) (ai.Provider, string, string, error) {
	cfg, err := s.getAIConfig(ctx)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %s", ErrAIConfig, err.Error())
	}

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		logger.Warn("ai provider create failed", "module", "service", "action", "ask", "resource", "ai", "result", "failed", "provider", cfg.Provider, "model", cfg.Model, "error", err)
		return nil, "", "", fmt.Errorf("%w: %s", ErrAIConfig, err.Error())
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, "", "", fmt.Errorf("rate limit: %w", err)
	}

	location := ""
	if loc != nil {
		location = fmt.Sprintf("%.5f,%.5f", loc.Lat, loc.Lon)
	}
	today := time.Now().Local().Format("2006-01-02")
	systemPrompt := ai.GetAnswerPrompt(s.answerLanguage(ctx), location, today)

	snapshot := s.entries.Snapshot(ctx)
	blocks := make([]string, len(snapshot))
	for i, e := range snapshot {
		blocks[i] = ai.FormatEntryBlock(e.Date, e.Content, model.FormatTicketNumber(e.TicketNumber))
	}
	userContent := fmt.Sprintf("<journal>\n%s\n</journal>\n\n<question>\n%s\n</question>", strings.Join(blocks, "\n"), question)

	return provider, systemPrompt, userContent, nil
}

func (s *askService) RecordExchange(ctx context.Context, question, answer string) Answer {
	result := Answer{
		Text:      answer,
		Citations: s.resolveCitations(ctx, answer),
	}

	now := time.Now()
	s.mu.Lock()
	s.history = append(s.history,
		ChatMessage{ID: uuid.New().String(), Role: "user", Text: question, CreatedAt: now},
		ChatMessage{ID: uuid.New().String(), Role: "assistant", Text: result.Text, Citations: result.Citations, CreatedAt: now},
	)
	s.mu.Unlock()

	return result
}

func (s *askService) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]ChatMessage, len(s.history))
	copy(history, s.history)
	return history
}

// resolveCitations extracts the calendar dates cited in the answer text
// and matches each against the entries' local calendar dates.
func (s *askService) resolveCitations(ctx context.Context, answer string) []Citation {
	dates := citationPattern.FindAllString(answer, -1)
	if len(dates) == 0 {
		return nil
	}

	byDate := make(map[string][]string)
	for _, e := range s.entries.Snapshot(ctx) {
		day := e.CalendarDate()
		if day != "" {
			byDate[day] = append(byDate[day], e.ID)
		}
	}

	seen := make(map[string]struct{}, len(dates))
	var citations []Citation
	for _, date := range dates {
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}
		if ids := byDate[date]; len(ids) > 0 {
			citations = append(citations, Citation{Date: date, EntryIDs: ids})
		}
	}
	return citations
}

func (s *askService) getAIConfig(ctx context.Context) (ai.Config, error) {
	var cfg ai.Config

	// Batch fetch all ai.* settings in a single query
	settings, err := s.settings.GetByPrefix(ctx, "ai.")
	if err != nil {
		return cfg, fmt.Errorf("get AI settings: %w", err)
	}

	settingsMap := make(map[string]string, len(settings))
	for _, setting := range settings {
		settingsMap[setting.Key] = setting.Value
	}

	cfg.Provider = settingsMap[KeyAIProvider]
	if cfg.Provider == "" {
		cfg.Provider = ai.ProviderAnthropic
	}

	cfg.APIKey = settingsMap[KeyAIAPIKey]
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("AI API key is not configured")
	}

	cfg.BaseURL = settingsMap[KeyAIBaseURL]

	cfg.Model = settingsMap[KeyAIModel]
	if cfg.Model == "" {
		return cfg, fmt.Errorf("AI model is not configured")
	}

	if settingsMap[KeyAIThinking] == "true" {
		cfg.Thinking = true
	}

	if val := settingsMap[KeyAIThinkingBudget]; val != "" {
		var budget int
		fmt.Sscanf(val, "%d", &budget)
		cfg.ThinkingBudget = budget
	}

	cfg.ReasoningEffort = settingsMap[KeyAIReasoningEffort]

	return cfg, nil
}

func (s *askService) answerLanguage(ctx context.Context) string {
	setting, err := s.settings.Get(ctx, KeyAIAnswerLanguage)
	if err != nil || setting == nil || setting.Value == "" {
		return "en-US" // default
	}
	return setting.Value
}
