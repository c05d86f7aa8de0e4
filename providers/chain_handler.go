package providers

import (
	"context"
	"fmt"
	"log/slog"

	"skycast.app/models"
)

type BaseForecastHandler struct {
	next         ForecastProviderChain
	provider     ForecastProvider
	providerName string
}

func NewBaseForecastHandler(provider ForecastProvider, providerName string) *BaseForecastHandler {
	return &BaseForecastHandler{
		provider:     provider,
		providerName: providerName,
	}
}

func (h *BaseForecastHandler) Handle(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	if h.provider != nil {
		response, err := h.provider.GetForecast(ctx, lat, lon)
		if err == nil {
			return response, nil
		}

		slog.Info("provider failed", "provider", h.providerName, "lat", lat, "lon", lon, "error", err)

		// If this is the last handler in the chain, return the actual error
		if h.next == nil {
			return nil, err
		}
	}

	if h.next != nil {
		return h.next.Handle(ctx, lat, lon)
	}

	return nil, fmt.Errorf("all forecast providers failed for %.4f,%.4f", lat, lon)
}

func (h *BaseForecastHandler) SetNext(handler ForecastProviderChain) {
	h.next = handler
}

func (h *BaseForecastHandler) GetProviderName() string {
	return h.providerName
}

type OpenMeteoHandler struct {
	*BaseForecastHandler
}

func NewOpenMeteoHandler(provider ForecastProvider) ForecastProviderChain {
	return &OpenMeteoHandler{
		BaseForecastHandler: NewBaseForecastHandler(provider, "OpenMeteo"),
	}
}

type WeatherAPIHandler struct {
	*BaseForecastHandler
}

func NewWeatherAPIHandler(provider ForecastProvider) ForecastProviderChain {
	return &WeatherAPIHandler{
		BaseForecastHandler: NewBaseForecastHandler(provider, "WeatherAPI"),
	}
}

type ChainBuilder struct {
	handlers []ForecastProviderChain
}

func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{
		handlers: make([]ForecastProviderChain, 0),
	}
}

func (cb *ChainBuilder) AddHandler(handler ForecastProviderChain) *ChainBuilder {
	cb.handlers = append(cb.handlers, handler)
	return cb
}

func (cb *ChainBuilder) Build() ForecastProviderChain {
	if len(cb.handlers) == 0 {
		return nil
	}

	for i := 0; i < len(cb.handlers)-1; i++ {
		cb.handlers[i].SetNext(cb.handlers[i+1])
	}

	return cb.handlers[0]
}
