package service

import (
	"context"
	"testing"

	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"github.com/fakhrymubarak/weather-dashboard/internal/repository"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Mock repository for testing
type mockWeatherRepository struct {
	err      error
	mockData *model.WeatherResult
	queries  []model.WeatherQuery
}

func (m *mockWeatherRepository) FetchByCity(ctx context.Context, city string) (*model.WeatherResult, error) {
	return m.Fetch(ctx, model.CityQuery(city))
}

func (m *mockWeatherRepository) FetchByCoords(ctx context.Context, lat, lon float64) (*model.WeatherResult, error) {
	return m.Fetch(ctx, model.CoordsQuery(lat, lon))
}

func (m *mockWeatherRepository) Fetch(ctx context.Context, query model.WeatherQuery) (*model.WeatherResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.mockData, nil
}

var _ repository.WeatherRepository = (*mockWeatherRepository)(nil)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestWeatherService_GetWeather(t *testing.T) {
	london := &model.WeatherResult{LocationName: "London", TemperatureC: 15.2, ConditionText: "clear sky"}
	tests := []struct {
		name        string
		query       model.WeatherQuery
		repoErr     error
		wantErr     error
		wantQueries int
	}{
		{
			name:        "Successful city lookup",
			query:       model.CityQuery("London"),
			wantQueries: 1,
		},
		{
			name:        "Successful coordinate lookup",
			query:       model.CoordsQuery(51.5, -0.1),
			wantQueries: 1,
		},
		{
			name:        "Repository error",
			query:       model.CityQuery("InvalidCity"),
			repoErr:     repository.ErrLocationNotFound,
			wantErr:     repository.ErrLocationNotFound,
			wantQueries: 1,
		},
		{
			name:        "Invalid query never reaches the repository",
			query:       model.WeatherQuery{},
			wantErr:     model.ErrInvalidQuery,
			wantQueries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockWeatherRepository{err: tt.repoErr, mockData: london}
			svc := NewWeatherService(mockRepo)

			weather, err := svc.GetWeather(context.Background(), tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, weather)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, london, weather)
			}
			assert.Len(t, mockRepo.queries, tt.wantQueries)
		})
	}
}

func TestWeatherService_RecordsSpans(t *testing.T) {
	recorder := withSpanRecorder(t)

	svc := NewWeatherService(&mockWeatherRepository{err: repository.ErrInvalidAPIKey})
	_, err := svc.GetWeather(context.Background(), model.CityQuery("London"))
	assert.ErrorIs(t, err, repository.ErrInvalidAPIKey)

	spans := recorder.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "weather.lookup", spans[0].Name())
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "auth", spans[0].Status().Description)
	}
}
