package model

import (
	"errors"
	"math"
	"strings"
)

var ErrInvalidQuery = errors.New("query must name either a city or a coordinate pair")

// WeatherQuery selects a location by city name or by coordinates. Exactly one
// variant is set.
type WeatherQuery struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func CityQuery(city string) WeatherQuery {
	return WeatherQuery{City: city}
}

func CoordsQuery(lat, lon float64) WeatherQuery {
	return WeatherQuery{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// IsCoords reports whether the query uses the coordinate variant.
func (q WeatherQuery) IsCoords() bool {
	return q.Coords != nil
}

// Validate checks that exactly one variant is active and that coordinates are in range.
func (q WeatherQuery) Validate() error {
	hasCity := strings.TrimSpace(q.City) != ""
	if hasCity == q.IsCoords() {
		return ErrInvalidQuery
	}
	if q.IsCoords() {
		c := q.Coords
		if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			return ErrInvalidQuery
		}
	}
	return nil
}

// WeatherResult is the normalized successful response. It is never mutated
// after it is built.
type WeatherResult struct {
	LocationName  string  `json:"locationName"`
	TemperatureC  float64 `json:"temperatureC"`
	HumidityPct   int     `json:"humidityPct"`
	WindSpeedMs   float64 `json:"windSpeedMs"`
	ConditionIcon string  `json:"conditionIcon"`
	ConditionText string  `json:"conditionText"`
}
