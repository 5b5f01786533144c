package service

import (
	"context"

	"github.com/fakhrymubarak/weather-dashboard/internal/config"
	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"github.com/fakhrymubarak/weather-dashboard/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "weather-dashboard/service"

// WeatherServiceInterface is what the dashboard and handlers depend on.
type WeatherServiceInterface interface {
	GetWeather(ctx context.Context, query model.WeatherQuery) (*model.WeatherResult, error)
}

type WeatherService struct {
	repo   repository.WeatherRepository
	tracer trace.Tracer
	logger *zap.SugaredLogger
}

func NewWeatherService(repo repository.WeatherRepository) *WeatherService {
	return &WeatherService{
		repo:   repo,
		tracer: otel.Tracer(tracerName),
		logger: config.GetLogger(),
	}
}

// GetWeather validates the query and performs a single provider lookup.
func (s *WeatherService) GetWeather(ctx context.Context, query model.WeatherQuery) (*model.WeatherResult, error) {
	ctx, span := s.tracer.Start(ctx, "weather.lookup")
	defer span.End()

	if err := query.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		return nil, err
	}

	if query.IsCoords() {
		span.SetAttributes(
			attribute.Float64("weather.lat", query.Coords.Lat),
			attribute.Float64("weather.lon", query.Coords.Lon),
		)
	} else {
		span.SetAttributes(attribute.String("weather.city", query.City))
	}

	weather, err := s.repo.Fetch(ctx, query)
	if err != nil {
		kind := repository.Kind(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.logger.Warnw("Weather lookup failed", "query", query, "kind", kind, "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("weather.location", weather.LocationName))
	s.logger.Infow("Weather lookup succeeded", "location", weather.LocationName, "temperatureC", weather.TemperatureC)
	return weather, nil
}
