// Package assist proposes issue titles for feedback descriptions using Gemini.
package assist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"
)

const systemPrompt = `You write titles for issues in a bug tracker.
Given a user's feedback, reply with ONE short title (max 12 words) that
summarises the problem or request. Reply with the title only: no quotes,
no markdown, no trailing period.`

var ErrEmptySuggestion = errors.New("model returned no title")

type generateFunc func(ctx context.Context, prompt string) (string, error)

type Suggester struct {
	generate   generateFunc
	maxRetries int
	backoff    time.Duration
}

func NewSuggester(ctx context.Context, apiKey, model string) (*Suggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}
	gen := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
		if err != nil {
			return "", err
		}
		if resp == nil || len(resp.Candidates) == 0 {
			return "", nil
		}
		return resp.Text(), nil
	}

	return &Suggester{generate: gen, maxRetries: 3, backoff: 5 * time.Second}, nil
}

// SuggestTitle returns a cleaned title for description, at most maxLen runes.
func (s *Suggester) SuggestTitle(ctx context.Context, description string, maxLen int) (string, error) {
	prompt := "Feedback:\n" + strings.TrimSpace(description)

	text, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("suggest title: %w", err)
	}

	title := CleanTitle(text, maxLen)
	if title == "" {
		return "", ErrEmptySuggestion
	}
	return title, nil
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func (s *Suggester) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	for attempt := range s.maxRetries {
		text, err := s.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		wait := s.backoff * time.Duration(attempt+1)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return s.generate(ctx, prompt)
}

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reHeading    = regexp.MustCompile(`^#{1,6}\s+`)
	reLabel      = regexp.MustCompile(`(?i)^title:\s*`)
)

// CleanTitle keeps the first non-empty line of a model reply, strips
// markdown and surrounding quotes, and truncates to maxLen runes.
func CleanTitle(text string, maxLen int) string {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}

	line = reHeading.ReplaceAllString(line, "")
	line = reLabel.ReplaceAllString(line, "")
	line = reBold.ReplaceAllString(line, "$1")
	line = reInlineCode.ReplaceAllString(line, "$1")
	line = strings.Trim(line, `"'“”«» `)
	line = strings.TrimRight(line, ".")
	line = strings.TrimSpace(line)

	if maxLen > 0 && utf8.RuneCountInString(line) > maxLen {
		runes := []rune(line)
		line = strings.TrimSpace(string(runes[:maxLen]))
	}
	return line
}
