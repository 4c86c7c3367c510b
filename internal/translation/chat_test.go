package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatServer(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		requests = append(requests, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestChatTranslator(t *testing.T) {
	srv, requests := chatServer(t, http.StatusOK,
		`{"choices":[{"index":0,"message":{"role":"assistant","content":" hola mundo \n"}}]}`)

	tr := NewOpenAITranslator(Config{APIKey: "k", BaseURL: srv.URL, Source: "en-US"})
	got, err := tr.Translate(context.Background(), "hello world", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hola mundo" {
		t.Errorf("Translate = %q", got)
	}
	if len(*requests) != 1 || (*requests)[0]["model"] != "gpt-4o-mini" {
		t.Errorf("requests = %v", *requests)
	}
}

func TestChatTranslatorMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"no choices":    `{"choices":[]}`,
		"blank content": `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, _ := chatServer(t, http.StatusOK, body)
			tr := NewGroqTranslator(Config{APIKey: "k", BaseURL: srv.URL})
			if _, err := tr.Translate(context.Background(), "hi", "fr"); !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestChatTranslatorHTTPError(t *testing.T) {
	srv, _ := chatServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`)
	tr := NewOpenAITranslator(Config{APIKey: "k", BaseURL: srv.URL})
	if _, err := tr.Translate(context.Background(), "hi", "fr"); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestChatTranslatorEmptyInput(t *testing.T) {
	tr := NewOpenAITranslator(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	got, err := tr.Translate(context.Background(), "   ", "fr")
	if err != nil || got != "" {
		t.Errorf("Translate(blank) = %q, %v", got, err)
	}
}

func TestNewTranslator(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantNil bool
		wantErr bool
	}{
		{Config{Provider: "openai", APIKey: "k"}, false, false},
		{Config{Provider: "groq", APIKey: "k"}, false, false},
		{Config{Provider: "openai"}, true, true},
		{Config{Provider: "none"}, true, false},
		{Config{Provider: "deepl", APIKey: "k"}, true, true},
	}
	for _, tt := range tests {
		tr, err := NewTranslator(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewTranslator(%q) err = %v", tt.cfg.Provider, err)
		}
		if (tr == nil) != tt.wantNil {
			t.Errorf("NewTranslator(%q) = %v", tt.cfg.Provider, tr)
		}
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt("en-US", "es")
	if !strings.Contains(p, "from English to Spanish") {
		t.Errorf("prompt missing languages:\n%s", p)
	}
	if p := BuildSystemPrompt("", "ja"); !strings.Contains(p, "to Japanese") {
		t.Errorf("prompt without source:\n%s", p)
	}
}
