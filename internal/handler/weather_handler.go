package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fakhrymubarak/weather-dashboard/internal/config"
	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"github.com/fakhrymubarak/weather-dashboard/internal/repository"
	"github.com/fakhrymubarak/weather-dashboard/internal/service"
)

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
}

func NewWeatherHandler(svc service.WeatherServiceInterface) *WeatherHandler {
	return &WeatherHandler{WeatherService: svc}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

// statusFor maps a lookup failure to the status of the one-shot endpoint.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindConfiguration:
		return http.StatusInternalServerError
	case model.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// parseQuery reads either city or lat+lon from the URL.
func parseQuery(r *http.Request) (model.WeatherQuery, error) {
	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		query := model.CityQuery(q.Get("city"))
		return query, query.Validate()
	}
	if q.Get("city") != "" {
		return model.WeatherQuery{}, model.ErrInvalidQuery
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return model.WeatherQuery{}, model.ErrInvalidQuery
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return model.WeatherQuery{}, model.ErrInvalidQuery
	}
	query := model.CoordsQuery(lat, lon)
	return query, query.Validate()
}

// HandleWeather serves GET /weather?city=<c> or ?lat=<lat>&lon=<lon>.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest,
			model.ErrorResponse("Provide either 'city' or both 'lat' and 'lon' query parameters", ""))
		return
	}

	weather, err := h.WeatherService.GetWeather(r.Context(), query)
	if err != nil {
		if errors.Is(err, model.ErrInvalidQuery) {
			writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse(err.Error(), ""))
			return
		}
		kind := repository.Kind(err)
		writeJSONResponse(w, statusFor(kind), model.ErrorResponse(repository.Message(err), kind))
		return
	}

	writeJSONResponse(w, http.StatusOK, model.SuccessResponse(weather))
}
