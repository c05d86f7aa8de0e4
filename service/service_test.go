package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"skycast.app/config"
	apperrors "skycast.app/errors"
	"skycast.app/models"
	"skycast.app/providers/cache"
	"skycast.app/repository"
)

const testClientID = "6f1c2f6e-1f7a-4c48-9a35-d3fbd6f7a001"

// MockForecastManager for testing
type MockForecastManager struct {
	mock.Mock
}

func (m *MockForecastManager) GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ForecastResponse), args.Error(1)
}

// MockGeocodingService for testing
type MockGeocodingService struct {
	mock.Mock
}

func (m *MockGeocodingService) Search(ctx context.Context, query string) ([]models.Location, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockGeocodingService) Reverse(ctx context.Context, lat, lon float64) (*models.Location, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

// MockGeocodingProvider for testing the caching service
type MockGeocodingProvider struct {
	mock.Mock
}

func (m *MockGeocodingProvider) Search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockGeocodingProvider) Reverse(ctx context.Context, lat, lon float64) (*models.Location, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func metricForecast() *models.ForecastResponse {
	return &models.ForecastResponse{
		Current: models.CurrentConditions{
			Temperature: 20.0,
			WindSpeed:   10.0,
			Description: "Mainly clear",
		},
		Hourly:    []models.HourlyPoint{},
		Daily:     []models.DailyPoint{},
		Units:     "metric",
		Provider:  "OpenMeteo",
		FetchedAt: time.Now().UTC(),
	}
}

func kyivLocation() *models.Location {
	return &models.Location{
		Name:      "Kyiv",
		Country:   "Ukraine",
		Latitude:  50.45,
		Longitude: 30.52,
	}
}

func TestWeatherService_GetForecastByCoords(t *testing.T) {
	t.Run("AttachesReverseGeocodedLocation", func(t *testing.T) {
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)
		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		geocoder.On("Reverse", mock.Anything, 50.45, 30.52).Return(kyivLocation(), nil)

		svc := NewWeatherService(manager, geocoder)
		forecast, err := svc.GetForecastByCoords(context.Background(), 50.45, 30.52, "metric")

		require.NoError(t, err)
		require.NotNil(t, forecast.Location)
		assert.Equal(t, "Kyiv", forecast.Location.Name)
		assert.Equal(t, 20.0, forecast.Current.Temperature)
	})

	t.Run("ReverseFailureDoesNotFailForecast", func(t *testing.T) {
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)
		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		geocoder.On("Reverse", mock.Anything, 50.45, 30.52).
			Return(nil, apperrors.NewExternalAPIError("nominatim down", nil))

		svc := NewWeatherService(manager, geocoder)
		forecast, err := svc.GetForecastByCoords(context.Background(), 50.45, 30.52, "metric")

		require.NoError(t, err)
		assert.Nil(t, forecast.Location)
	})

	t.Run("ImperialConversion", func(t *testing.T) {
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)
		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)
		geocoder.On("Reverse", mock.Anything, 50.45, 30.52).Return(kyivLocation(), nil)

		svc := NewWeatherService(manager, geocoder)
		forecast, err := svc.GetForecastByCoords(context.Background(), 50.45, 30.52, "imperial")

		require.NoError(t, err)
		assert.Equal(t, "imperial", forecast.Units)
		assert.Equal(t, 68.0, forecast.Current.Temperature)
	})

	t.Run("InvalidUnits", func(t *testing.T) {
		svc := NewWeatherService(new(MockForecastManager), new(MockGeocodingService))
		forecast, err := svc.GetForecastByCoords(context.Background(), 50.45, 30.52, "kelvin")

		assert.Nil(t, forecast)
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("ManagerErrorPropagates", func(t *testing.T) {
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)
		manager.On("GetForecast", mock.Anything, 50.45, 30.52).
			Return(nil, apperrors.NewExternalAPIError("all providers down", nil))

		svc := NewWeatherService(manager, geocoder)
		forecast, err := svc.GetForecastByCoords(context.Background(), 50.45, 30.52, "metric")

		assert.Nil(t, forecast)
		assert.True(t, apperrors.IsExternalAPIError(err))
	})
}

func TestWeatherService_GetForecastByQuery(t *testing.T) {
	t.Run("GeocodesThenFetches", func(t *testing.T) {
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)
		geocoder.On("Search", mock.Anything, "Kyiv").Return([]models.Location{*kyivLocation()}, nil)
		manager.On("GetForecast", mock.Anything, 50.45, 30.52).Return(metricForecast(), nil)

		svc := NewWeatherService(manager, geocoder)
		forecast, err := svc.GetForecastByQuery(context.Background(), "Kyiv", "metric")

		require.NoError(t, err)
		require.NotNil(t, forecast.Location)
		assert.Equal(t, "Kyiv", forecast.Location.Name)
	})

	t.Run("UnknownPlace", func(t *testing.T) {
		manager := new(MockForecastManager)
		geocoder := new(MockGeocodingService)
		geocoder.On("Search", mock.Anything, "Nowhereville").
			Return(nil, apperrors.NewNotFoundError("no locations found for query"))

		svc := NewWeatherService(manager, geocoder)
		forecast, err := svc.GetForecastByQuery(context.Background(), "Nowhereville", "metric")

		assert.Nil(t, forecast)
		assert.True(t, apperrors.IsNotFoundError(err))
		manager.AssertNotCalled(t, "GetForecast")
	})
}

func TestGeocodingService(t *testing.T) {
	cfg := &config.GeocodingConfig{MaxResults: 5, CacheTTLMinutes: 60}

	t.Run("SearchCachesResults", func(t *testing.T) {
		provider := new(MockGeocodingProvider)
		provider.On("Search", mock.Anything, "Kyiv", 5).
			Return([]models.Location{*kyivLocation()}, nil).Once()

		memCache := cache.NewMemoryCache()
		defer memCache.Stop()

		svc := NewGeocodingService(provider, memCache, cfg)

		first, err := svc.Search(context.Background(), "Kyiv")
		require.NoError(t, err)

		second, err := svc.Search(context.Background(), "Kyiv")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		provider.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("SearchKeyIsCaseInsensitive", func(t *testing.T) {
		provider := new(MockGeocodingProvider)
		provider.On("Search", mock.Anything, "Kyiv", 5).
			Return([]models.Location{*kyivLocation()}, nil).Once()

		memCache := cache.NewMemoryCache()
		defer memCache.Stop()

		svc := NewGeocodingService(provider, memCache, cfg)

		_, err := svc.Search(context.Background(), "Kyiv")
		require.NoError(t, err)

		_, err = svc.Search(context.Background(), "kyiv")
		require.NoError(t, err)

		provider.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		svc := NewGeocodingService(new(MockGeocodingProvider), nil, cfg)
		results, err := svc.Search(context.Background(), "   ")

		assert.Nil(t, results)
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("ReverseCachesResult", func(t *testing.T) {
		provider := new(MockGeocodingProvider)
		provider.On("Reverse", mock.Anything, 50.45, 30.52).Return(kyivLocation(), nil).Once()

		memCache := cache.NewMemoryCache()
		defer memCache.Stop()

		svc := NewGeocodingService(provider, memCache, cfg)

		first, err := svc.Reverse(context.Background(), 50.45, 30.52)
		require.NoError(t, err)

		second, err := svc.Reverse(context.Background(), 50.45, 30.52)
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		provider.AssertNumberOfCalls(t, "Reverse", 1)
	})

	t.Run("ProviderErrorNotCached", func(t *testing.T) {
		provider := new(MockGeocodingProvider)
		provider.On("Search", mock.Anything, "Kyiv", 5).
			Return(nil, apperrors.NewExternalAPIError("down", nil))

		memCache := cache.NewMemoryCache()
		defer memCache.Stop()

		svc := NewGeocodingService(provider, memCache, cfg)

		_, err := svc.Search(context.Background(), "Kyiv")
		assert.Error(t, err)

		_, err = svc.Search(context.Background(), "Kyiv")
		assert.Error(t, err)
		provider.AssertNumberOfCalls(t, "Search", 2)
	})
}

func setupSettingsService(t *testing.T) *SettingsService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ClientSettings{}))
	return NewSettingsService(repository.NewSettingsRepository(db))
}

func TestSettingsService(t *testing.T) {
	t.Run("DefaultsForNewClient", func(t *testing.T) {
		svc := setupSettingsService(t)

		settings, err := svc.GetSettings(testClientID)

		require.NoError(t, err)
		assert.Equal(t, "metric", settings.Units)
		assert.Equal(t, "auto", settings.Theme)
		assert.Equal(t, "24h", settings.TimeFormat)
		assert.Nil(t, settings.ConsentAcceptedAt)
	})

	t.Run("UpdateAndReload", func(t *testing.T) {
		svc := setupSettingsService(t)

		updated, err := svc.UpdateSettings(testClientID, &models.SettingsRequest{
			Units: "imperial", Theme: "night", TimeFormat: "12h",
		})
		require.NoError(t, err)
		assert.Equal(t, "imperial", updated.Units)

		reloaded, err := svc.GetSettings(testClientID)
		require.NoError(t, err)
		assert.Equal(t, "imperial", reloaded.Units)
		assert.Equal(t, "night", reloaded.Theme)
	})

	t.Run("ConsentTimestampWrittenOnce", func(t *testing.T) {
		svc := setupSettingsService(t)

		first, err := svc.UpdateSettings(testClientID, &models.SettingsRequest{
			Units: "metric", Theme: "auto", TimeFormat: "24h", ConsentAccepted: true,
		})
		require.NoError(t, err)
		require.NotNil(t, first.ConsentAcceptedAt)

		time.Sleep(5 * time.Millisecond)

		second, err := svc.UpdateSettings(testClientID, &models.SettingsRequest{
			Units: "imperial", Theme: "day", TimeFormat: "12h", ConsentAccepted: true,
		})
		require.NoError(t, err)
		require.NotNil(t, second.ConsentAcceptedAt)
		assert.WithinDuration(t, *first.ConsentAcceptedAt, *second.ConsentAcceptedAt, time.Millisecond)
	})

	t.Run("InvalidUnits", func(t *testing.T) {
		svc := setupSettingsService(t)

		_, err := svc.UpdateSettings(testClientID, &models.SettingsRequest{
			Units: "kelvin", Theme: "auto", TimeFormat: "24h",
		})
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("UnknownTheme", func(t *testing.T) {
		svc := setupSettingsService(t)

		_, err := svc.UpdateSettings(testClientID, &models.SettingsRequest{
			Units: "metric", Theme: "vaporwave", TimeFormat: "24h",
		})
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func setupLocationService(t *testing.T) *LocationService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SavedLocation{}))
	return NewLocationService(repository.NewLocationRepository(db))
}

func TestLocationService(t *testing.T) {
	kyivRequest := &models.SavedLocationRequest{
		Name: "Kyiv", Country: "Ukraine", Latitude: 50.45, Longitude: 30.52,
	}

	t.Run("SaveAndList", func(t *testing.T) {
		svc := setupLocationService(t)

		saved, err := svc.SaveLocation(testClientID, kyivRequest)
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)

		locations, err := svc.ListLocations(testClientID)
		require.NoError(t, err)
		require.Len(t, locations, 1)
		assert.Equal(t, "Kyiv", locations[0].Name)
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		svc := setupLocationService(t)

		_, err := svc.SaveLocation(testClientID, kyivRequest)
		require.NoError(t, err)

		_, err = svc.SaveLocation(testClientID, kyivRequest)
		assert.True(t, apperrors.IsAlreadyExistsError(err))
	})

	t.Run("CapEnforced", func(t *testing.T) {
		svc := setupLocationService(t)

		for i := 0; i < maxSavedLocations; i++ {
			_, err := svc.SaveLocation(testClientID, &models.SavedLocationRequest{
				Name:     "Spot",
				Latitude: float64(i), Longitude: float64(i),
			})
			require.NoError(t, err)
		}

		_, err := svc.SaveLocation(testClientID, kyivRequest)
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		svc := setupLocationService(t)

		err := svc.DeleteLocation(testClientID, 999)
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("DeleteExisting", func(t *testing.T) {
		svc := setupLocationService(t)

		saved, err := svc.SaveLocation(testClientID, kyivRequest)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteLocation(testClientID, saved.ID))

		locations, err := svc.ListLocations(testClientID)
		require.NoError(t, err)
		assert.Empty(t, locations)
	})
}
