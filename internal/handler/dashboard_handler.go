package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fakhrymubarak/weather-dashboard/internal/dashboard"
	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"github.com/go-chi/chi/v5"
)

// DashboardHandler exposes dashboard triggers. Lookup failures are part of the
// returned state, not HTTP errors.
type DashboardHandler struct {
	Registry *dashboard.Registry
}

func NewDashboardHandler(reg *dashboard.Registry) *DashboardHandler {
	return &DashboardHandler{Registry: reg}
}

// locateRequest is the geolocation outcome reported by the device. Denied or
// missing coordinates mean the position is unknown.
type locateRequest struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Denied bool     `json:"denied"`
}

func (l locateRequest) locator() dashboard.Locator {
	switch {
	case l.Denied:
		return dashboard.FailingLocator(dashboard.ErrPermissionDenied)
	case l.Lat == nil || l.Lon == nil:
		return dashboard.FailingLocator(dashboard.ErrLocationUnavailable)
	default:
		return dashboard.StaticLocator(*l.Lat, *l.Lon)
	}
}

type searchRequest struct {
	City string `json:"city"`
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeState(w http.ResponseWriter, status int, state model.DashboardState) {
	writeJSONResponse(w, status, model.SuccessResponse(state.View()))
}

func writeBadBody(w http.ResponseWriter) {
	writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse("Invalid JSON body", ""))
}

func (h *DashboardHandler) controller(w http.ResponseWriter, r *http.Request) (*dashboard.Controller, bool) {
	c, ok := h.Registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, model.ErrorResponse("Dashboard not found", ""))
	}
	return c, ok
}

// Create serves POST /dashboards and runs the on-load flow.
func (h *DashboardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	c := h.Registry.Create()
	writeState(w, http.StatusCreated, c.Mount(r.Context(), req.locator()))
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeState(w, http.StatusOK, c.State())
}

// Search serves POST /dashboards/{id}/search. Without a city in the body the
// current input is searched.
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	if req.City != "" {
		c.SetCityInput(req.City)
	}
	writeState(w, http.StatusOK, c.Search(r.Context()))
}

// Input serves PUT /dashboards/{id}/input, updating the city text only.
func (h *DashboardHandler) Input(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	writeState(w, http.StatusOK, c.SetCityInput(req.City))
}

func (h *DashboardHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	state, err := c.Shuffle(r.Context())
	if err != nil {
		writeJSONResponse(w, http.StatusForbidden, model.ErrorResponse("Shuffle is disabled", ""))
		return
	}
	writeState(w, http.StatusOK, state)
}

func (h *DashboardHandler) Locate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req locateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(w)
		return
	}
	state, err := c.Locate(r.Context(), req.locator())
	if err != nil {
		writeJSONResponse(w, http.StatusForbidden, model.ErrorResponse("Geolocation is disabled", ""))
		return
	}
	writeState(w, http.StatusOK, state)
}

func (h *DashboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeState(w, http.StatusOK, c.Reset())
}

func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Delete(r.Context(), chi.URLParam(r, "id")) {
		writeJSONResponse(w, http.StatusNotFound, model.ErrorResponse("Dashboard not found", ""))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
