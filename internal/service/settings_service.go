package service

import (
	"context"
	"fmt"
	"strings"

	"logbook/backend/internal/repository"
	"logbook/backend/internal/service/ai"
)

// AISettings holds the AI configuration.
type AISettings struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	AnswerLanguage  string `json:"answerLanguage"`
}

// Setting keys
const (
	KeyAIProvider        = "ai.provider"
	KeyAIAPIKey          = "ai.api_key"
	KeyAIBaseURL         = "ai.base_url"
	KeyAIModel           = "ai.model"
	KeyAIThinking        = "ai.thinking"
	KeyAIThinkingBudget  = "ai.thinking_budget"
	KeyAIReasoningEffort = "ai.reasoning_effort"
	KeyAIAnswerLanguage  = "ai.answer_language"
)

// SettingsService provides settings management.
type SettingsService interface {
	// GetAISettings returns the AI configuration with a masked API key.
	GetAISettings(ctx context.Context) (*AISettings, error)
	// SetAISettings updates the AI configuration. An empty or masked
	// apiKey keeps the existing key.
	SetAISettings(ctx context.Context, settings *AISettings) error
	// TestAI tests the AI connection with the given configuration.
	TestAI(ctx context.Context, provider, apiKey, baseURL, model string, thinking bool, thinkingBudget int, reasoningEffort string) (string, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) GetAISettings(ctx context.Context) (*AISettings, error) {
	settings := &AISettings{
		Provider:        ai.ProviderAnthropic, // default
		ThinkingBudget:  10000,                // default budget
		ReasoningEffort: "medium",             // default effort
		AnswerLanguage:  "en-US",              // default language
	}

	if val, err := s.getString(ctx, KeyAIProvider); err == nil && val != "" {
		settings.Provider = val
	}
	if val, err := s.getString(ctx, KeyAIAPIKey); err == nil && val != "" {
		settings.APIKey = maskAPIKey(val)
	}
	if val, err := s.getString(ctx, KeyAIBaseURL); err == nil {
		settings.BaseURL = val
	}
	if val, err := s.getString(ctx, KeyAIModel); err == nil {
		settings.Model = val
	}
	if val, err := s.getString(ctx, KeyAIThinking); err == nil && val == "true" {
		settings.Thinking = true
	}
	if val, err := s.getInt(ctx, KeyAIThinkingBudget); err == nil && val > 0 {
		settings.ThinkingBudget = val
	}
	// Allow empty string to override the default (budget-only mode).
	if val, err := s.getString(ctx, KeyAIReasoningEffort); err == nil {
		settings.ReasoningEffort = val
	}
	if val, err := s.getString(ctx, KeyAIAnswerLanguage); err == nil && val != "" {
		settings.AnswerLanguage = val
	}

	return settings, nil
}

func (s *settingsService) SetAISettings(ctx context.Context, settings *AISettings) error {
	if settings.Provider != "" {
		if err := s.repo.Set(ctx, KeyAIProvider, settings.Provider); err != nil {
			return fmt.Errorf("set provider: %w", err)
		}
	}
	if err := s.setAPIKey(ctx, KeyAIAPIKey, settings.APIKey); err != nil {
		return fmt.Errorf("set api key: %w", err)
	}
	if err := s.repo.Set(ctx, KeyAIBaseURL, settings.BaseURL); err != nil {
		return fmt.Errorf("set base url: %w", err)
	}
	if err := s.repo.Set(ctx, KeyAIModel, settings.Model); err != nil {
		return fmt.Errorf("set model: %w", err)
	}
	thinkingVal := "false"
	if settings.Thinking {
		thinkingVal = "true"
	}
	if err := s.repo.Set(ctx, KeyAIThinking, thinkingVal); err != nil {
		return fmt.Errorf("set thinking: %w", err)
	}
	if err := s.repo.Set(ctx, KeyAIThinkingBudget, fmt.Sprintf("%d", settings.ThinkingBudget)); err != nil {
		return fmt.Errorf("set thinking budget: %w", err)
	}
	if err := s.repo.Set(ctx, KeyAIReasoningEffort, settings.ReasoningEffort); err != nil {
		return fmt.Errorf("set reasoning effort: %w", err)
	}
	if err := s.repo.Set(ctx, KeyAIAnswerLanguage, settings.AnswerLanguage); err != nil {
		return fmt.Errorf("set answer language: %w", err)
	}
	return nil
}

func (s *settingsService) TestAI(ctx context.Context, provider, apiKey, baseURL, model string, thinking bool, thinkingBudget int, reasoningEffort string) (string, error) {
	// A masked key means "use the stored one".
	if isMaskedKey(apiKey) || apiKey == "" {
		stored, err := s.getString(ctx, KeyAIAPIKey)
		if err != nil {
			return "", fmt.Errorf("get stored api key: %w", err)
		}
		apiKey = stored
	}

	p, err := ai.NewProvider(ai.Config{
		Provider:        provider,
		APIKey:          apiKey,
		BaseURL:         baseURL,
		Model:           model,
		Thinking:        thinking,
		ThinkingBudget:  thinkingBudget,
		ReasoningEffort: reasoningEffort,
	})
	if err != nil {
		return "", err
	}
	return p.Test(ctx)
}

func (s *settingsService) getString(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

func (s *settingsService) getInt(ctx context.Context, key string) (int, error) {
	val, err := s.getString(ctx, key)
	if err != nil || val == "" {
		return 0, err
	}
	var result int
	_, err = fmt.Sscanf(val, "%d", &result)
	return result, err
}

// setAPIKey stores an API key, keeping the existing one when the value
// is empty or still masked.
func (s *settingsService) setAPIKey(ctx context.Context, key, value string) error {
	if value == "" || isMaskedKey(value) {
		return nil
	}
	return s.repo.Set(ctx, key, value)
}

// maskAPIKey hides all but the first and last 4 characters.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}

func isMaskedKey(key string) bool {
	return strings.Contains(key, "****")
}
