package translation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// ChatTranslator implements Translator on an OpenAI-compatible chat
// completions API.
type ChatTranslator struct {
	name   string
	client *openai.Client
	model  string
	source string
}

// NewOpenAITranslator creates a translator backed by OpenAI
func NewOpenAITranslator(cfg Config) *ChatTranslator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return newChatTranslator("openai", clientConfig, orDefault(cfg.Model, "gpt-4o-mini"), cfg.Source)
}

// NewGroqTranslator creates a translator backed by Groq's OpenAI-compatible API
func NewGroqTranslator(cfg Config) *ChatTranslator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = groqBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return newChatTranslator("groq", clientConfig, orDefault(cfg.Model, "llama-3.3-70b-versatile"), cfg.Source)
}

func newChatTranslator(name string, cc openai.ClientConfig, model, source string) *ChatTranslator {
	return &ChatTranslator{
		name:   name,
		client: openai.NewClientWithConfig(cc),
		model:  model,
		source: source,
	}
}

func (t *ChatTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(t.source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	}

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-translator: API call failed after %v: %v", t.name, duration, err)
		return "", fmt.Errorf("%s chat completion: %w", t.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: no response choices: %w", t.name, ErrMalformed)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("%s chat completion: empty content: %w", t.name, ErrMalformed)
	}
	log.Printf("%s-translator: translated %d chars to %s in %v", t.name, len(text), target, duration)
	return result, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
