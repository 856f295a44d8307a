// Package gemini implements the summarize.Summarizer interface using
// Google's Gemini API. Every API-level failure maps to the unavailable
// branch: the loop's policy for a misbehaving summarizer is degradation,
// never retry, so no error classification beyond that is needed here.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/phrazzld/vault-agent/internal/config"
	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/summarize"
)

// ErrInvalidConfig is returned when the summarizer configuration is invalid.
var ErrInvalidConfig = errors.New("invalid summarizer configuration")

// Summarizer calls the Gemini API to summarize task content.
type Summarizer struct {
	logger   *slog.Logger
	client   *genai.Client
	model    string
	maxChars int
}

// NewSummarizer creates a Gemini-backed Summarizer from the provided
// configuration. The API key and model name must be set.
func NewSummarizer(ctx context.Context, logger *slog.Logger, cfg config.SummarizerConfig) (*Summarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if cfg.MaxPromptChars <= 0 {
		return nil, fmt.Errorf("%w: max prompt chars must be positive", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &Summarizer{
		logger:   logger.With(slog.String("component", "gemini_summarizer")),
		client:   client,
		model:    cfg.ModelName,
		maxChars: cfg.MaxPromptChars,
	}, nil
}

// Ensure Summarizer implements summarize.Summarizer.
var _ summarize.Summarizer = (*Summarizer)(nil)

// Summarize implements summarize.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, task *domain.Task, d domain.Domain) (string, error) {
	prompt := s.buildPrompt(task.Content, d)

	s.logger.DebugContext(ctx, "calling Gemini API",
		"task_id", task.ID,
		"model", s.model,
		"prompt_chars", len(prompt))

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", summarize.ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", summarize.ErrUnavailable)
	}

	s.logger.DebugContext(ctx, "Gemini API call successful",
		"task_id", task.ID,
		"summary_chars", len(text))
	return text, nil
}

// buildPrompt renders the summarization prompt, truncating oversized
// task content to the configured ceiling without splitting a rune.
func (s *Summarizer) buildPrompt(content string, d domain.Domain) string {
	if len(content) > s.maxChars {
		cut := s.maxChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return fmt.Sprintf(
		"You are an AI employee handling a %s task.\n"+
			"Summarize the task clearly in 3-6 bullet points.\n"+
			"Then write a short 'Next actions' section (1-3 bullets).\n"+
			"Keep it concise. Do NOT invent details.\n\n"+
			"TASK:\n%s",
		d, content)
}
