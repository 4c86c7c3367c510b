// Package translation turns the finalized transcript into a target language.
package translation

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a provider answers without usable text.
var ErrMalformed = errors.New("malformed translation response")

// Translator translates text into the language identified by target.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Config holds translator configuration
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // override, mostly for tests
	Source   string // engine language tag, e.g. "en-US"
}

// NewTranslator creates a translator for the configured provider
func NewTranslator(cfg Config) (Translator, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAITranslator(cfg), nil
	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		return NewGroqTranslator(cfg), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", cfg.Provider)
	}
}
