package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	genai "google.golang.org/genai"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/output"
)

const refinePrompt = `You repair text extracted from PDF headings. Return ONLY valid JSON, no code fences, no explanations.

The JSON below is a document title and outline. Some words are broken by stray spaces ("Intro duction") or glued together ("TableofContents").
Fix ONLY the spacing inside "title" and every "text" value.

CRITICAL RULES:
- Keep the same number of outline entries in the same order
- Do not change "level" or "page"
- Do not add, remove, reorder or translate words or characters
- Return the same JSON structure

`

type Gemini struct {
	client   *genai.Client
	model    string
	attempts uint
}

func NewGemini(ctx context.Context, apiKey, model string, attempts uint) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if attempts == 0 {
		attempts = 1
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model, attempts: attempts}, nil
}

func (g *Gemini) prompt(ctx context.Context, text string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// RefineOutline asks the model to repair heading spacing. On any failure
// the original outline is returned along with the error.
func (g *Gemini) RefineOutline(ctx context.Context, res outline.Result) (outline.Result, error) {
	if g.client == nil || (len(res.Outline) == 0 && res.Title == "") {
		return res, nil
	}
	in, err := output.Marshal(res)
	if err != nil {
		return res, err
	}

	var refined outline.Result
	err = retry.Do(
		func() error {
			text, err := g.prompt(ctx, refinePrompt+string(in))
			if err != nil {
				return fmt.Errorf("gemini API call failed: %w", err)
			}
			parsed, err := parseRefinement(text)
			if err != nil {
				return err
			}
			refined, err = merge(res, parsed)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(1*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return res, err
	}
	return refined, nil
}

// parseRefinement extracts the outline JSON from a model answer and checks
// it against the output schema.
func parseRefinement(text string) (outline.Result, error) {
	var out outline.Result
	js := stripCodeFences(text)
	if err := output.Validate([]byte(js)); err != nil {
		s := findFirstJSON(js)
		if s == "" {
			return out, fmt.Errorf("no JSON found in model response: %w", err)
		}
		if err := output.Validate([]byte(s)); err != nil {
			return out, err
		}
		js = s
	}
	if err := json.Unmarshal([]byte(js), &out); err != nil {
		return out, fmt.Errorf("failed to parse model response: %w", err)
	}
	return out, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func findFirstJSON(s string) string {
	// naive scan from the first '{' to its matching '}'
	start := -1
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
