package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fakhrymubarak/weather-dashboard/internal/dashboard"
	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"github.com/fakhrymubarak/weather-dashboard/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dashboardResponse struct {
	Data    *model.DashboardView `json:"data"`
	Error   *string              `json:"error"`
	Message string               `json:"message"`
}

func newDashboardRouter(svc *mockWeatherService, opts dashboard.Options) (http.Handler, *dashboard.Registry) {
	if opts.DemoCities == nil {
		opts.DemoCities = []string{"Tokyo"}
	}
	reg := dashboard.NewRegistry(svc, opts)
	h := NewDashboardHandler(reg)
	r := chi.NewRouter()
	r.Post("/dashboards", h.Create)
	r.Get("/dashboards/{id}", h.Get)
	r.Delete("/dashboards/{id}", h.Delete)
	r.Post("/dashboards/{id}/search", h.Search)
	r.Put("/dashboards/{id}/input", h.Input)
	r.Post("/dashboards/{id}/shuffle", h.Shuffle)
	r.Post("/dashboards/{id}/locate", h.Locate)
	r.Post("/dashboards/{id}/reset", h.Reset)
	return r, reg
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, dashboardResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var resp dashboardResponse
	if rr.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	}
	return rr, resp
}

func allFeatures() dashboard.Options {
	return dashboard.Options{Geolocation: true, Shuffle: true, DiscardStale: true}
}

func TestDashboardHandler_CreateMountsWithCoordinates(t *testing.T) {
	svc := &mockWeatherService{}
	h, reg := newDashboardRouter(svc, allFeatures())

	rr, resp := do(t, h, http.MethodPost, "/dashboards", `{"lat":59.9,"lon":10.7}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, resp.Data)
	assert.Equal(t, model.StatusSuccess, resp.Data.Status)
	assert.Equal(t, "Here", resp.Data.Result.LocationName)
	assert.Equal(t, dashboard.AdviceLightSweater, resp.Data.Advice)
	assert.Equal(t, 1, reg.Len())
}

func TestDashboardHandler_CreateWithoutCoordinatesFallsBack(t *testing.T) {
	for _, body := range []string{"", `{"denied":true}`, `{"lat":1}`} {
		svc := &mockWeatherService{}
		h, _ := newDashboardRouter(svc, allFeatures())

		rr, resp := do(t, h, http.MethodPost, "/dashboards", body)
		assert.Equal(t, http.StatusCreated, rr.Code)
		require.NotNil(t, resp.Data)
		assert.Equal(t, "Tokyo", resp.Data.CityInput)
		assert.Equal(t, []model.WeatherQuery{model.CityQuery("Tokyo")}, svc.queries)
	}
}

func TestDashboardHandler_CreateWithGeolocationDisabled(t *testing.T) {
	svc := &mockWeatherService{}
	h, _ := newDashboardRouter(svc, dashboard.Options{Shuffle: true})

	rr, resp := do(t, h, http.MethodPost, "/dashboards", "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, model.StatusIdle, resp.Data.Status)
	assert.Empty(t, svc.queries)

	rr, _ = do(t, h, http.MethodPost, "/dashboards/"+resp.Data.ID+"/locate", `{"lat":1,"lon":2}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDashboardHandler_SearchFlow(t *testing.T) {
	svc := &mockWeatherService{}
	h, _ := newDashboardRouter(svc, dashboard.Options{})

	_, created := do(t, h, http.MethodPost, "/dashboards", "")
	base := "/dashboards/" + created.Data.ID

	rr, resp := do(t, h, http.MethodPut, base+"/input", `{"city":"Lisbon"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Lisbon", resp.Data.CityInput)
	assert.Equal(t, model.StatusIdle, resp.Data.Status)

	rr, resp = do(t, h, http.MethodPost, base+"/search", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Lisbon", resp.Data.Result.LocationName)

	svc.err = repository.ErrLocationNotFound
	rr, resp = do(t, h, http.MethodPost, base+"/search", `{"city":"Zzzzz"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.StatusFailed, resp.Data.Status)
	assert.Nil(t, resp.Data.Result)
	require.NotNil(t, resp.Data.Error)
	assert.Equal(t, model.KindNotFound, resp.Data.Error.Kind)

	rr, resp = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.StatusFailed, resp.Data.Status)

	rr, resp = do(t, h, http.MethodPost, base+"/reset", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.StatusIdle, resp.Data.Status)
	assert.Empty(t, resp.Data.CityInput)
	assert.Nil(t, resp.Data.Error)
}

func TestDashboardHandler_Shuffle(t *testing.T) {
	svc := &mockWeatherService{}
	h, _ := newDashboardRouter(svc, dashboard.Options{Shuffle: true, DemoCities: []string{"Tokyo", "Paris"}})
	_, created := do(t, h, http.MethodPost, "/dashboards", "")

	rr, resp := do(t, h, http.MethodPost, "/dashboards/"+created.Data.ID+"/shuffle", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, []string{"Tokyo", "Paris"}, resp.Data.CityInput)
	assert.Len(t, svc.queries, 1)

	h, _ = newDashboardRouter(&mockWeatherService{}, dashboard.Options{})
	_, created = do(t, h, http.MethodPost, "/dashboards", "")
	rr, _ = do(t, h, http.MethodPost, "/dashboards/"+created.Data.ID+"/shuffle", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDashboardHandler_Errors(t *testing.T) {
	h, _ := newDashboardRouter(&mockWeatherService{}, allFeatures())

	rr, resp := do(t, h, http.MethodGet, "/dashboards/unknown", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.NotNil(t, resp.Error)

	rr, _ = do(t, h, http.MethodPost, "/dashboards", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	_, created := do(t, h, http.MethodPost, "/dashboards", "")
	rr, _ = do(t, h, http.MethodPost, "/dashboards/"+created.Data.ID+"/search", "[")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, h, http.MethodDelete, "/dashboards/"+created.Data.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr, _ = do(t, h, http.MethodDelete, "/dashboards/"+created.Data.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
