package providers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/models"
)

// GeminiProvider implements InsightGenerator using the Gemini API.
// Structured kinds ask for a JSON response body; grounded kinds attach
// the Google Search tool instead, because the API does not allow
// combining search grounding with a JSON response MIME type, and their
// JSON payload is parsed out of the text response.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	grounding   bool
	retryCfg    RetryConfig
}

// NewGeminiProvider creates a new Gemini insight provider
func NewGeminiProvider(ctx context.Context, cfg *config.InsightConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigurationError("GEMINI_API_KEY is required", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewConfigurationError("failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		grounding:   cfg.EnableGrounding,
		retryCfg: RetryConfig{
			MaxAttempts:    cfg.MaxRetries,
			InitialBackoff: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:     8 * time.Second,
		},
	}, nil
}

// Generate produces one AI panel for the given location and conditions
func (p *GeminiProvider) Generate(ctx context.Context, kind string, location models.Location, current *models.CurrentConditions) (*models.InsightResponse, error) {
	prompt, err := buildPrompt(kind, location, current)
	if err != nil {
		return nil, err
	}

	grounded := p.grounding && kindWantsGrounding(kind)

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](p.temperature),
	}
	if grounded {
		genCfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	} else if kind != models.InsightKindSummary {
		genCfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var resp *genai.GenerateContentResponse
	err = RetryWithBackoff(ctx, p.retryCfg, isTransientGenAIError, func() error {
		var callErr error
		resp, callErr = p.client.Models.GenerateContent(ctx, p.model, contents, genCfg)
		return callErr
	})
	if err != nil {
		var apiErr genai.APIError
		if stderrors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return nil, errors.NewRateLimitError("insight generation rate limited", err)
		}
		return nil, errors.NewExternalAPIError("insight generation failed", err)
	}

	text := extractText(resp)
	if text == "" {
		return nil, errors.NewExternalAPIError("insight generation returned no content", nil)
	}

	insight := &models.InsightResponse{
		Kind:        kind,
		Grounded:    grounded,
		GeneratedAt: time.Now().UTC(),
	}

	if err := parseInsightPayload(insight, kind, text); err != nil {
		return nil, err
	}

	return insight, nil
}

// Close releases the underlying client. The genai.Client holds no
// resources that need explicit release, so this is a no-op.
func (p *GeminiProvider) Close() error {
	return nil
}

func kindWantsGrounding(kind string) bool {
	return kind == models.InsightKindPOI || kind == models.InsightKindMovies
}

// isTransientGenAIError reports whether the call should be retried.
// API errors retry on 429 and 5xx; anything else from the API is
// permanent. Transport errors retry.
func isTransientGenAIError(err error) bool {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

func buildPrompt(kind string, location models.Location, current *models.CurrentConditions) (string, error) {
	place := location.Name
	if location.Country != "" {
		place = fmt.Sprintf("%s, %s", location.Name, location.Country)
	}

	conditions := "unknown conditions"
	if current != nil {
		conditions = fmt.Sprintf("%.1f°C, %s, humidity %.0f%%, wind %.0f km/h",
			current.Temperature, current.Description, current.Humidity, current.WindSpeed)
	}

	today := time.Now().Format("January 2")

	switch kind {
	case models.InsightKindSummary:
		return fmt.Sprintf(
			"You are a friendly weather assistant. Current weather in %s: %s. "+
				"Write one short paragraph (max 60 words) with a practical insight for the day: "+
				"what to wear, whether to plan outdoor activities, anything notable. Plain text, no markdown.",
			place, conditions), nil
	case models.InsightKindPOI:
		return fmt.Sprintf(
			"Suggest 5 points of interest near %s that suit this weather: %s. "+
				"Respond with JSON only, shaped as "+
				`{"points_of_interest":[{"name":"...","category":"...","description":"...","distance":"..."}]}. `+
				"Keep descriptions under 25 words.",
			place, conditions), nil
	case models.InsightKindMovies:
		return fmt.Sprintf(
			"List 5 movies currently playing in cinemas near %s. "+
				"Respond with JSON only, shaped as "+
				`{"movies":[{"title":"...","genre":"...","rating":"...","description":"..."}]}. `+
				"Keep descriptions under 20 words.",
			place), nil
	case models.InsightKindTrivia:
		return fmt.Sprintf(
			"Give 5 historical events that happened on %s in or near %s. "+
				"Respond with JSON only, shaped as "+
				`{"trivia":[{"year":1900,"text":"..."}]}. `+
				"Keep each text under 30 words.",
			today, place), nil
	case models.InsightKindQuote:
		return fmt.Sprintf(
			"Current weather in %s: %s. Pick one short famous quote that fits this weather mood. "+
				"Respond with JSON only, shaped as "+
				`{"text":"...","author":"..."}.`,
			place, conditions), nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown insight kind: %s", kind))
	}
}

func parseInsightPayload(insight *models.InsightResponse, kind, text string) error {
	switch kind {
	case models.InsightKindSummary:
		insight.Text = strings.TrimSpace(text)
		return nil
	case models.InsightKindPOI:
		var payload struct {
			PointsOfInterest []models.PointOfInterest `json:"points_of_interest"`
		}
		if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &payload); err != nil {
			return errors.NewExternalAPIError("failed to parse points of interest", err)
		}
		insight.POIs = payload.PointsOfInterest
		return nil
	case models.InsightKindMovies:
		var payload struct {
			Movies []models.MovieListing `json:"movies"`
		}
		if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &payload); err != nil {
			return errors.NewExternalAPIError("failed to parse movie listings", err)
		}
		insight.Movies = payload.Movies
		return nil
	case models.InsightKindTrivia:
		var payload struct {
			Trivia []models.TriviaItem `json:"trivia"`
		}
		if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &payload); err != nil {
			return errors.NewExternalAPIError("failed to parse trivia", err)
		}
		insight.Trivia = payload.Trivia
		return nil
	case models.InsightKindQuote:
		var quote models.Quote
		if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &quote); err != nil {
			return errors.NewExternalAPIError("failed to parse quote", err)
		}
		insight.Quote = &quote
		return nil
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown insight kind: %s", kind))
	}
}

// extractText flattens the text parts of the first candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		break
	}

	return sb.String()
}

// cleanJSONResponse strips markdown code fences the model wraps around
// JSON payloads when a response MIME type cannot be forced.
func cleanJSONResponse(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		return strings.TrimSpace(cleaned)
	}

	// Grounded answers sometimes lead with prose; cut to the outermost braces
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}

	return cleaned
}
