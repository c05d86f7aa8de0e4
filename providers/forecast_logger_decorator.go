package providers

import (
	"context"
	"fmt"
	"time"

	"skycast.app/models"
)

type ForecastLoggerDecorator struct {
	wrappedProvider ForecastProvider
	logger          FileLogger
	providerName    string
}

func NewForecastLoggerDecorator(provider ForecastProvider, logger FileLogger, providerName string) ForecastProvider {
	return &ForecastLoggerDecorator{
		wrappedProvider: provider,
		logger:          logger,
		providerName:    providerName,
	}
}

func (d *ForecastLoggerDecorator) GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	target := fmt.Sprintf("%.4f,%.4f", lat, lon)

	d.logger.LogRequest(d.providerName, target)
	startTime := time.Now()

	response, err := d.wrappedProvider.GetForecast(ctx, lat, lon)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.LogError(d.providerName, target, err, duration)
		return nil, err
	}

	d.logger.LogResponse(d.providerName, target, duration)
	return response, nil
}
