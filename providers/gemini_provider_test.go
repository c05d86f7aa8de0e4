package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skycast.app/config"
	apperrors "skycast.app/errors"
	"skycast.app/models"
)

func TestNewGeminiProvider_RequiresAPIKey(t *testing.T) {
	provider, err := NewGeminiProvider(context.Background(), &config.InsightConfig{})

	assert.Nil(t, provider)
	assert.True(t, apperrors.IsConfigurationError(err))
}

func TestBuildPrompt(t *testing.T) {
	location := models.Location{Name: "Kyiv", Country: "Ukraine"}
	current := &models.CurrentConditions{
		Temperature: 21.5,
		Description: "Partly cloudy",
		Humidity:    48,
		WindSpeed:   14,
	}

	t.Run("SummaryMentionsConditions", func(t *testing.T) {
		prompt, err := buildPrompt(models.InsightKindSummary, location, current)

		require.NoError(t, err)
		assert.Contains(t, prompt, "Kyiv, Ukraine")
		assert.Contains(t, prompt, "Partly cloudy")
		assert.Contains(t, prompt, "21.5")
	})

	t.Run("StructuredKindsAskForJSON", func(t *testing.T) {
		for _, kind := range []string{
			models.InsightKindPOI,
			models.InsightKindMovies,
			models.InsightKindTrivia,
			models.InsightKindQuote,
		} {
			prompt, err := buildPrompt(kind, location, current)
			require.NoError(t, err)
			assert.Contains(t, prompt, "JSON", "kind %s", kind)
		}
	})

	t.Run("NilConditionsAllowed", func(t *testing.T) {
		prompt, err := buildPrompt(models.InsightKindSummary, location, nil)

		require.NoError(t, err)
		assert.Contains(t, prompt, "unknown conditions")
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := buildPrompt("horoscope", location, current)
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestKindWantsGrounding(t *testing.T) {
	assert.True(t, kindWantsGrounding(models.InsightKindPOI))
	assert.True(t, kindWantsGrounding(models.InsightKindMovies))
	assert.False(t, kindWantsGrounding(models.InsightKindSummary))
	assert.False(t, kindWantsGrounding(models.InsightKindTrivia))
	assert.False(t, kindWantsGrounding(models.InsightKindQuote))
}

func TestCleanJSONResponse(t *testing.T) {
	t.Run("StripsCodeFence", func(t *testing.T) {
		input := "```json\n{\"text\":\"hello\"}\n```"
		assert.Equal(t, `{"text":"hello"}`, cleanJSONResponse(input))
	})

	t.Run("StripsBareFence", func(t *testing.T) {
		input := "```\n{\"text\":\"hello\"}\n```"
		assert.Equal(t, `{"text":"hello"}`, cleanJSONResponse(input))
	})

	t.Run("CutsLeadingProse", func(t *testing.T) {
		input := `Here is your answer: {"text":"hello"} hope that helps`
		assert.Equal(t, `{"text":"hello"}`, cleanJSONResponse(input))
	})

	t.Run("PassesPlainJSONThrough", func(t *testing.T) {
		input := `{"text":"hello"}`
		assert.Equal(t, input, cleanJSONResponse(input))
	})
}

func TestParseInsightPayload(t *testing.T) {
	t.Run("Summary", func(t *testing.T) {
		insight := &models.InsightResponse{}
		err := parseInsightPayload(insight, models.InsightKindSummary, "  Take an umbrella.  ")

		require.NoError(t, err)
		assert.Equal(t, "Take an umbrella.", insight.Text)
	})

	t.Run("POI", func(t *testing.T) {
		insight := &models.InsightResponse{}
		payload := `{"points_of_interest":[{"name":"Botanical Garden","category":"park","description":"Central park","distance":"2 km"}]}`
		err := parseInsightPayload(insight, models.InsightKindPOI, payload)

		require.NoError(t, err)
		require.Len(t, insight.POIs, 1)
		assert.Equal(t, "Botanical Garden", insight.POIs[0].Name)
	})

	t.Run("Trivia", func(t *testing.T) {
		insight := &models.InsightResponse{}
		payload := "```json\n{\"trivia\":[{\"year\":1892,\"text\":\"First electric tram line opened.\"}]}\n```"
		err := parseInsightPayload(insight, models.InsightKindTrivia, payload)

		require.NoError(t, err)
		require.Len(t, insight.Trivia, 1)
		assert.Equal(t, 1892, insight.Trivia[0].Year)
	})

	t.Run("Quote", func(t *testing.T) {
		insight := &models.InsightResponse{}
		payload := `{"text":"There is no bad weather.","author":"Unknown"}`
		err := parseInsightPayload(insight, models.InsightKindQuote, payload)

		require.NoError(t, err)
		require.NotNil(t, insight.Quote)
		assert.Equal(t, "Unknown", insight.Quote.Author)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		insight := &models.InsightResponse{}
		err := parseInsightPayload(insight, models.InsightKindQuote, "not json at all")

		assert.True(t, apperrors.IsExternalAPIError(err))
	})
}
