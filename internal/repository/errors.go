package repository

import (
	"errors"
	"fmt"

	"github.com/fakhrymubarak/weather-dashboard/internal/model"
)

// Custom error types
var (
	ErrAPIKeyMissing    = errors.New("missing API key")
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("city not found")
	ErrExternalAPI      = errors.New("something went wrong fetching weather data")

	// ErrLocationWeather is the transient error for coordinate lookups.
	ErrLocationWeather = fmt.Errorf("%w: unable to fetch location weather", ErrExternalAPI)
)

// Kind maps an error returned by the client to its category. Anything not
// recognized is transient.
func Kind(err error) model.ErrorKind {
	switch {
	case errors.Is(err, ErrAPIKeyMissing):
		return model.KindConfiguration
	case errors.Is(err, ErrInvalidAPIKey):
		return model.KindAuth
	case errors.Is(err, ErrLocationNotFound):
		return model.KindNotFound
	default:
		return model.KindTransient
	}
}

// Message returns the short text shown to the user in place of a result.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrAPIKeyMissing):
		return "Missing API key. Check your configuration."
	case errors.Is(err, ErrInvalidAPIKey):
		return "Invalid API key. Please verify your configuration."
	case errors.Is(err, ErrLocationNotFound):
		return "City not found. Try again!"
	case errors.Is(err, ErrLocationWeather):
		return "Unable to fetch location weather."
	default:
		return "Something went wrong fetching weather data."
	}
}

// ToDashboardError converts a lookup failure into its user-facing form.
func ToDashboardError(err error) *model.DashboardError {
	return &model.DashboardError{Kind: Kind(err), Message: Message(err)}
}
