package claude

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/joshharrison/critpath/internal/reporter"
)

// Suggestion is a single proposed pipeline register insertion point.
type Suggestion struct {
	After  string `json:"after"`  // component whose output gets the register
	Reason string `json:"reason"`
}

// Explanation holds the full response from Claude.
type Explanation struct {
	Summary     string       `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner anthropic.Client
	model anthropic.Model

	PromptTemplate string // optional path to a text/template user prompt
}

// DefaultModel is used when no model is configured.
const DefaultModel = anthropic.ModelClaudeSonnet4_6

// NewClient returns a client for the given key, falling back to
// $ANTHROPIC_API_KEY, and model, falling back to DefaultModel.
func NewClient(apiKey, model string) (*Client, error) {
	key := cmp.Or(apiKey, os.Getenv("ANTHROPIC_API_KEY"))
	if key == "" {
		return nil, fmt.Errorf("no Anthropic API key: set ANTHROPIC_API_KEY or add it to .env")
	}

	return &Client{
		inner: anthropic.NewClient(option.WithAPIKey(key)),
		model: cmp.Or(anthropic.Model(model), DefaultModel),
	}, nil
}

// Explain sends the analysis of one circuit to Claude and returns a short
// narrative plus register insertion suggestions. summary is the rendered
// terminal summary of the report.
func (c *Client) Explain(ctx context.Context, rep *reporter.Report, summary string) (*Explanation, error) {
	prompt, err := RenderPrompt(promptDataFor(rep, summary), c.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(2048),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return ParseExplanation(text.String(), rep)
}

// ParseExplanation decodes Claude's JSON answer. Suggestions naming a
// component that is not in rep are dropped; rep may be nil to skip that check.
func ParseExplanation(text string, rep *reporter.Report) (*Explanation, error) {
	text = stripJSONFences(text)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("parse claude response: invalid JSON\nraw: %s", text)
	}

	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, fmt.Errorf("parse claude response: expected object\nraw: %s", text)
	}

	result := &Explanation{Summary: strings.TrimSpace(doc.Get("summary").String())}
	doc.Get("suggestions").ForEach(func(_, s gjson.Result) bool {
		after := s.Get("after").String()
		if after == "" {
			return true
		}
		if rep != nil && rep.Component(after) == nil {
			return true
		}
		result.Suggestions = append(result.Suggestions, Suggestion{
			After:  after,
			Reason: s.Get("reason").String(),
		})
		return true
	})

	return result, nil
}

// stripJSONFences unwraps a ```json fenced block if the model added one.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	if _, rest, found := strings.Cut(body, "\n"); found {
		body = rest
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}
