package grammarassist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LanguageTool is the one concrete Engine mdp ships: an HTTP client for a
// LanguageTool-compatible `/v2/check` endpoint (self-hosted or the public
// API), following the same request/decode shape as internal/llmclient's
// OpenAI-compatible client.
type LanguageTool struct {
	apiBase  string
	language string
	http     *http.Client
}

// NewLanguageTool builds a LanguageTool client pointed at apiBase (e.g.
// "http://localhost:8081" for a self-hosted server).
func NewLanguageTool(apiBase, language string) *LanguageTool {
	if language == "" {
		language = "en-US"
	}
	return &LanguageTool{
		apiBase:  strings.TrimRight(apiBase, "/"),
		language: language,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type ltMatch struct {
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Message      string   `json:"message"`
	Replacements []ltRepl `json:"replacements"`
	Rule         ltRule   `json:"rule"`
}

type ltRepl struct {
	Value string `json:"value"`
}

type ltRule struct {
	Category ltCategory `json:"category"`
}

type ltCategory struct {
	ID string `json:"id"`
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

// Check implements Engine by POSTing text to the server's /v2/check
// endpoint and translating each match with at least one replacement into
// a Suggestion.
func (lt *LanguageTool) Check(text string) ([]Suggestion, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", lt.language)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.apiBase+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("grammarassist: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := lt.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grammarassist: calling languagetool: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grammarassist: languagetool returned %d", resp.StatusCode)
	}

	var decoded ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("grammarassist: decoding response: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(decoded.Matches))
	for _, m := range decoded.Matches {
		if len(m.Replacements) == 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Offset:      m.Offset,
			Length:      m.Length,
			Replacement: m.Replacements[0].Value,
			Category:    NormalizeCategory(m.Rule.Category.ID),
			Message:     m.Message,
		})
	}
	return suggestions, nil
}
