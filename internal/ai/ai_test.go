package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

var sample = outline.Result{
	Title: "Annual Re port",
	Outline: []outline.Heading{
		{Level: 1, Text: "1. Intro duction", Page: 1, Top: 72},
		{Level: 2, Text: "1.1 Scope", Page: 2, Top: 100},
	},
}

func TestNew(t *testing.T) {
	r, err := New(context.Background(), Options{Provider: "none"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := r.RefineOutline(context.Background(), sample)
	if err != nil || got.Title != sample.Title {
		t.Errorf("noop changed result: %+v %v", got, err)
	}

	if _, err := New(context.Background(), Options{Provider: "gemini"}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := New(context.Background(), Options{Provider: "openai"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestParseRefinement(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"plain", `{"title":"Annual Report","outline":[]}`, false},
		{"fenced", "```json\n{\"title\":\"Annual Report\",\"outline\":[]}\n```", false},
		{"chatty", `Sure! {"title":"Annual Report","outline":[]} Hope this helps.`, false},
		{"wrong shape", `{"title":"Annual Report","outline":[{"level":"H1"}]}`, true},
		{"no json", `I cannot help with that.`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseRefinement(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRefinement() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && res.Title != "Annual Report" {
				t.Errorf("unexpected title %q", res.Title)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	t.Run("spacing fixed", func(t *testing.T) {
		refined := outline.Result{Title: "Annual Report", Outline: []outline.Heading{
			{Level: 1, Text: "1. Introduction", Page: 1},
			{Level: 2, Text: "1.1  Scope", Page: 2},
		}}
		got, err := merge(sample, refined)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != "Annual Report" || got.Outline[0].Text != "1. Introduction" || got.Outline[1].Text != "1.1 Scope" {
			t.Errorf("unexpected merge %+v", got)
		}
		if got.Outline[0].Top != 72 {
			t.Errorf("expected positions kept, got %+v", got.Outline[0])
		}
	})

	rejects := map[string]outline.Result{
		"count": {Title: "Annual Report", Outline: sample.Outline[:1]},
		"level": {Title: "Annual Report", Outline: []outline.Heading{
			{Level: 2, Text: "1. Introduction", Page: 1}, {Level: 2, Text: "1.1 Scope", Page: 2},
		}},
		"words": {Title: "Annual Report", Outline: []outline.Heading{
			{Level: 1, Text: "1. Overview", Page: 1}, {Level: 2, Text: "1.1 Scope", Page: 2},
		}},
		"title": {Title: "Yearly Report", Outline: sample.Outline},
	}
	for name, refined := range rejects {
		t.Run(name, func(t *testing.T) {
			got, err := merge(sample, refined)
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("expected ErrRejected, got %v", err)
			}
			if got.Title != sample.Title {
				t.Errorf("expected original back, got %+v", got)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := stripCodeFences("```json\n{}\n```"); got != "{}" {
		t.Errorf("unexpected %q", got)
	}
	if got := findFirstJSON(`x {"a":{"b":1}} y {"c":2}`); got != `{"a":{"b":1}}` {
		t.Errorf("unexpected %q", got)
	}
}
