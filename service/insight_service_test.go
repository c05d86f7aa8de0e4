package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"skycast.app/config"
	apperrors "skycast.app/errors"
	"skycast.app/models"
	"skycast.app/providers/cache"
)

// MockInsightGenerator for testing
type MockInsightGenerator struct {
	mock.Mock
}

func (m *MockInsightGenerator) Generate(ctx context.Context, kind string, location models.Location, current *models.CurrentConditions) (*models.InsightResponse, error) {
	args := m.Called(ctx, kind, location, current)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InsightResponse), args.Error(1)
}

func insightConfig() *config.InsightConfig {
	return &config.InsightConfig{
		TTLMinutes:      30,
		DailyTTLMinutes: 1440,
		QuoteTTLMinutes: 360,
	}
}

func summaryInsight() *models.InsightResponse {
	return &models.InsightResponse{
		Kind:        models.InsightKindSummary,
		Text:        "A pleasant day for a walk.",
		GeneratedAt: time.Now().UTC(),
	}
}

func TestInsightService_GetInsight(t *testing.T) {
	t.Run("GeneratesAndCaches", func(t *testing.T) {
		generator := new(MockInsightGenerator)
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)

		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		generator.On("Generate", mock.Anything, models.InsightKindSummary, mock.Anything, mock.Anything).
			Return(summaryInsight(), nil).Once()

		memCache := cache.NewMemoryCache()
		defer memCache.Stop()

		svc := NewInsightService(generator, manager, geocoder, memCache, insightConfig())

		first, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "Kyiv")
		require.NoError(t, err)
		assert.Equal(t, "A pleasant day for a walk.", first.Text)

		second, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "Kyiv")
		require.NoError(t, err)
		assert.Equal(t, first.Text, second.Text)

		generator.AssertNumberOfCalls(t, "Generate", 1)
	})

	t.Run("UsesProvidedName", func(t *testing.T) {
		generator := new(MockInsightGenerator)
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)

		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		generator.On("Generate", mock.Anything, models.InsightKindSummary,
			mock.MatchedBy(func(loc models.Location) bool { return loc.Name == "Kyiv" }),
			mock.Anything).
			Return(summaryInsight(), nil)

		svc := NewInsightService(generator, manager, geocoder, nil, insightConfig())

		_, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "Kyiv")
		require.NoError(t, err)
		geocoder.AssertNotCalled(t, "Reverse")
	})

	t.Run("ReverseGeocodesWhenNameMissing", func(t *testing.T) {
		generator := new(MockInsightGenerator)
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)

		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		geocoder.On("Reverse", mock.Anything, 50.45, 30.52).Return(kyivLocation(), nil)
		generator.On("Generate", mock.Anything, models.InsightKindSummary,
			mock.MatchedBy(func(loc models.Location) bool { return loc.Name == "Kyiv" }),
			mock.Anything).
			Return(summaryInsight(), nil)

		svc := NewInsightService(generator, manager, geocoder, nil, insightConfig())

		_, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "")
		require.NoError(t, err)
	})

	t.Run("CoordinatesFallbackWhenReverseFails", func(t *testing.T) {
		generator := new(MockInsightGenerator)
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)

		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		geocoder.On("Reverse", mock.Anything, 50.45, 30.52).
			Return(nil, apperrors.NewExternalAPIError("down", nil))
		generator.On("Generate", mock.Anything, models.InsightKindSummary,
			mock.MatchedBy(func(loc models.Location) bool { return loc.Name == "50.4500, 30.5200" }),
			mock.Anything).
			Return(summaryInsight(), nil)

		svc := NewInsightService(generator, manager, geocoder, nil, insightConfig())

		_, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "")
		require.NoError(t, err)
	})

	t.Run("ForecastFailureStillGenerates", func(t *testing.T) {
		generator := new(MockInsightGenerator)
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)

		manager.On("GetForecast", mock.Anything, 50.45, 30.52).
			Return(nil, apperrors.NewExternalAPIError("all providers down", nil))
		generator.On("Generate", mock.Anything, models.InsightKindSummary, mock.Anything,
			mock.MatchedBy(func(current *models.CurrentConditions) bool { return current == nil })).
			Return(summaryInsight(), nil)

		svc := NewInsightService(generator, manager, geocoder, nil, insightConfig())

		_, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "Kyiv")
		require.NoError(t, err)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		svc := NewInsightService(new(MockInsightGenerator), new(MockForecastManager),
			new(MockGeocodingService), nil, insightConfig())

		insight, err := svc.GetInsight(context.Background(), "horoscope", 50.45, 30.52, "Kyiv")

		assert.Nil(t, insight)
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("NilGenerator", func(t *testing.T) {
		svc := NewInsightService(nil, new(MockForecastManager),
			new(MockGeocodingService), nil, insightConfig())

		insight, err := svc.GetInsight(context.Background(), models.InsightKindSummary, 50.45, 30.52, "Kyiv")

		assert.Nil(t, insight)
		assert.True(t, apperrors.IsConfigurationError(err))
	})

	t.Run("GeneratorErrorPropagates", func(t *testing.T) {
		generator := new(MockInsightGenerator)
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)

		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		generator.On("Generate", mock.Anything, models.InsightKindQuote, mock.Anything, mock.Anything).
			Return(nil, apperrors.NewRateLimitError("quota exceeded", nil))

		svc := NewInsightService(generator, manager, geocoder, nil, insightConfig())

		insight, err := svc.GetInsight(context.Background(), models.InsightKindQuote, 50.45, 30.52, "Kyiv")

		assert.Nil(t, insight)
		assert.True(t, apperrors.IsRateLimitError(err))
	})

	t.Run("TTLPerKind", func(t *testing.T) {
		svc := NewInsightService(nil, nil, nil, nil, insightConfig())

		assert.Equal(t, 30*time.Minute, svc.ttlFor(models.InsightKindSummary))
		assert.Equal(t, 24*time.Hour, svc.ttlFor(models.InsightKindPOI))
		assert.Equal(t, 24*time.Hour, svc.ttlFor(models.InsightKindMovies))
		assert.Equal(t, 24*time.Hour, svc.ttlFor(models.InsightKindTrivia))
		assert.Equal(t, 6*time.Hour, svc.ttlFor(models.InsightKindQuote))
	})
}
