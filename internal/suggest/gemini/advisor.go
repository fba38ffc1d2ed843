// Package gemini asks a Gemini model for revenue management advice.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

var ErrEmptyResponse = errors.New("model returned no text")

const defaultModel = "gemini-2.5-flash"

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Config struct {
	L      *logger.Logger
	APIKey string
	Model  string
}

type Advisor struct {
	l      *logger.Logger
	client *genai.Client
	model  generator
}

func New(ctx context.Context, conf Config) (*Advisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(conf.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	name := conf.Model
	if name == "" {
		name = defaultModel
	}

	model := client.GenerativeModel(name)
	model.SetTemperature(0.2) //nolint:gomnd
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedAction": {
				Type:   genai.TypeString,
				Format: "enum",
				Enum:   []string{string(calendar.SuggestRaise), string(calendar.SuggestLower), string(calendar.SuggestHold)},
			},
			"percentage": {Type: genai.TypeNumber},
			"reasoning":  {Type: genai.TypeString},
		},
		Required: []string{"suggestedAction", "percentage", "reasoning"},
	}

	return &Advisor{l: conf.L, client: client, model: model}, nil
}

func (a *Advisor) Close() error {
	if a.client == nil {
		return nil
	}

	if err := a.client.Close(); err != nil {
		return fmt.Errorf("close gemini client: %w", err)
	}

	return nil
}

func (a *Advisor) Suggest(ctx context.Context, pricing *booking.PricingContext) (*calendar.Suggestion, error) {
	resp, err := a.model.GenerateContent(ctx, genai.Text(buildPrompt(pricing)))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	suggestion, err := parseSuggestion(text)
	if err != nil {
		a.l.LogWarnf("Unusable pricing advice %q: %v", text, err)

		return nil, err
	}

	return suggestion, nil
}

var languages = map[string]string{
	"en": "English",
	"tr": "Turkish",
	"de": "German",
	"ru": "Russian",
}

// languageName accepts a code or a name and falls back to English.
func languageName(lang string) string {
	if name, ok := languages[strings.ToLower(lang)]; ok {
		return name
	}

	if lang == "" {
		return "English"
	}

	return lang
}

func buildPrompt(p *booking.PricingContext) string {
	var sb strings.Builder

	sb.WriteString("Act as a Revenue Manager for a boutique hotel")
	if p.HotelName != "" {
		sb.WriteString(" named " + p.HotelName)
	}

	sb.WriteString(".\nContext:\n")
	fmt.Fprintf(&sb, "- Room Type: %s\n", p.RoomType)
	fmt.Fprintf(&sb, "- Current Price: %.0f\n", p.CurrentPrice)
	fmt.Fprintf(&sb, "- Occupancy from %s to %s: %.0f%%\n", p.From, p.To, p.Occupancy)

	if p.CompetitorPrice > 0 {
		fmt.Fprintf(&sb, "- Competitor Average Price: %.0f\n", p.CompetitorPrice)
	} else {
		sb.WriteString("- Competitor Average Price: unknown\n")
	}

	sb.WriteString(`
Determine the best pricing strategy.
- If occupancy is high (>80%) or price is significantly lower than competitors, suggest raising.
- If occupancy is low (<40%) and price is higher than competitors, suggest lowering.
- Otherwise hold.
`)
	fmt.Fprintf(&sb, "\nReturn JSON. The 'reasoning' field must be in %s language, max 15 words.\n", languageName(p.Language))
	sb.WriteString("{ suggestedAction: 'raise'|'lower'|'hold', percentage: number (e.g. 10 for 10%), reasoning: string }")

	return sb.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String())
}

type advice struct {
	SuggestedAction string  `json:"suggestedAction"`
	Percentage      float64 `json:"percentage"`
	Reasoning       string  `json:"reasoning"`
}

// parseSuggestion reads the model's JSON, also when it is wrapped in a code fence.
func parseSuggestion(text string) (*calendar.Suggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var a advice
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &a); err != nil {
		return nil, fmt.Errorf("decode advice: %w", err)
	}

	action := calendar.SuggestedAction(strings.ToLower(a.SuggestedAction))
	if !action.Valid() {
		return nil, fmt.Errorf("%w: action %q", calendar.ErrInvalidSuggestion, a.SuggestedAction)
	}

	if a.Percentage < 0 {
		return nil, fmt.Errorf("%w: percentage %v", calendar.ErrInvalidSuggestion, a.Percentage)
	}

	return &calendar.Suggestion{
		Action:     action,
		Percentage: a.Percentage,
		Reasoning:  a.Reasoning,
	}, nil
}
