package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fakhrymubarak/weather-dashboard/internal/model"
)

const DefaultAPIURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherRepository defines the interface for weather data access
type WeatherRepository interface {
	FetchByCity(ctx context.Context, city string) (*model.WeatherResult, error)
	FetchByCoords(ctx context.Context, lat, lon float64) (*model.WeatherResult, error)
	Fetch(ctx context.Context, query model.WeatherQuery) (*model.WeatherResult, error)
}

// weatherRepository implements WeatherRepository against OpenWeatherMap
type weatherRepository struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// Options configures a repository. An empty APIKey is allowed here and
// reported on every fetch as ErrAPIKeyMissing.
type Options struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(opts Options) WeatherRepository {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &weatherRepository{
		apiKey:     opts.APIKey,
		apiURL:     apiURL,
		httpClient: client,
	}
}

func (r *weatherRepository) FetchByCity(ctx context.Context, city string) (*model.WeatherResult, error) {
	params := url.Values{}
	params.Set("q", city)
	return r.fetch(ctx, params, ErrExternalAPI)
}

func (r *weatherRepository) FetchByCoords(ctx context.Context, lat, lon float64) (*model.WeatherResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return r.fetch(ctx, params, ErrLocationWeather)
}

// Fetch dispatches on the active query variant.
func (r *weatherRepository) Fetch(ctx context.Context, query model.WeatherQuery) (*model.WeatherResult, error) {
	if query.IsCoords() {
		return r.FetchByCoords(ctx, query.Coords.Lat, query.Coords.Lon)
	}
	return r.FetchByCity(ctx, query.City)
}

// fetch performs exactly one GET. transientErr is returned for every failure
// that is not a missing key, 401 or 404.
func (r *weatherRepository) fetch(ctx context.Context, params url.Values, transientErr error) (*model.WeatherResult, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	params.Set("appid", r.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transientErr, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transientErr, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrInvalidAPIKey
	case http.StatusNotFound:
		return nil, ErrLocationNotFound
	default:
		return nil, fmt.Errorf("%w: provider returned status %d", transientErr, resp.StatusCode)
	}

	var data model.OpenWeatherMapResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", transientErr, err)
	}
	return data.ToWeatherResult(), nil
}
