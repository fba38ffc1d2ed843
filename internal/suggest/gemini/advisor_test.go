package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/go-cmp/cmp"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

type modelStub struct {
	prompt string
	text   string
	err    error
}

func (m *modelStub) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if text, ok := parts[0].(genai.Text); ok {
			m.prompt = string(text)
		}
	}

	if m.err != nil {
		return nil, m.err
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(m.text)}, Role: "model"},
		}},
	}, nil
}

func pricing() *booking.PricingContext {
	return &booking.PricingContext{
		HotelName:       "Aura Boutique",
		RoomType:        calendar.Deluxe,
		From:            "2024-03-01",
		To:              "2024-03-07",
		CurrentPrice:    4000,
		Occupancy:       85.7,
		CompetitorPrice: 4500,
		Language:        "tr",
	}
}

func TestSuggest(t *testing.T) {
	stub := &modelStub{text: `{"suggestedAction":"raise","percentage":12,"reasoning":"Doluluk yüksek"}`}
	a := &Advisor{l: logger.NewNop(), client: nil, model: stub}

	got, err := a.Suggest(context.Background(), pricing())
	if err != nil {
		t.Fatal(err)
	}

	want := &calendar.Suggestion{Action: calendar.SuggestRaise, Percentage: 12, Reasoning: "Doluluk yüksek"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Suggest() mismatch (-want +got):\n%s", diff)
	}

	for _, fragment := range []string{
		"Room Type: Deluxe",
		"Current Price: 4000",
		"from 2024-03-01 to 2024-03-07: 86%",
		"Competitor Average Price: 4500",
		"in Turkish language",
	} {
		if !strings.Contains(stub.prompt, fragment) {
			t.Errorf("prompt misses %q:\n%s", fragment, stub.prompt)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSuggestErrors(t *testing.T) {
	tests := []struct {
		name    string
		stub    *modelStub
		wantErr error
	}{
		{"model failure", &modelStub{err: errors.New("quota")}, nil},
		{"empty text", &modelStub{text: "  "}, ErrEmptyResponse},
		{"unknown action", &modelStub{text: `{"suggestedAction":"panic","percentage":5,"reasoning":""}`}, calendar.ErrInvalidSuggestion},
		{"negative percentage", &modelStub{text: `{"suggestedAction":"lower","percentage":-5,"reasoning":""}`}, calendar.ErrInvalidSuggestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Advisor{l: logger.NewNop(), client: nil, model: tt.stub}

			_, err := a.Suggest(context.Background(), pricing())
			if err == nil {
				t.Fatal("expected an error")
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *calendar.Suggestion
	}{
		{
			name: "plain",
			text: `{"suggestedAction":"hold","percentage":0,"reasoning":"stable"}`,
			want: &calendar.Suggestion{Action: calendar.SuggestHold, Percentage: 0, Reasoning: "stable"},
		},
		{
			name: "fenced",
			text: "```json\n{\"suggestedAction\":\"Lower\",\"percentage\":15,\"reasoning\":\"soft week\"}\n```",
			want: &calendar.Suggestion{Action: calendar.SuggestLower, Percentage: 15, Reasoning: "soft week"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestion(tt.text)
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseSuggestion() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := parseSuggestion("not json"); err == nil {
		t.Error("expected a decode error")
	}
}

func TestPromptWithoutCompetitors(t *testing.T) {
	p := pricing()
	p.CompetitorPrice = 0
	p.Language = ""

	prompt := buildPrompt(p)

	if !strings.Contains(prompt, "Competitor Average Price: unknown") || !strings.Contains(prompt, "in English language") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
}
