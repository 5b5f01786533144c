package dashboard

import (
	"context"
	"errors"

	"github.com/fakhrymubarak/weather-dashboard/internal/model"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrLocationUnavailable = errors.New("geolocation unavailable")
)

// Locator reads the device position.
type Locator interface {
	Locate(ctx context.Context) (model.Coordinates, error)
}

type LocatorFunc func(ctx context.Context) (model.Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (model.Coordinates, error) {
	return f(ctx)
}

// StaticLocator reports a fixed position.
func StaticLocator(lat, lon float64) Locator {
	return LocatorFunc(func(context.Context) (model.Coordinates, error) {
		return model.Coordinates{Lat: lat, Lon: lon}, nil
	})
}

// FailingLocator always fails with err.
func FailingLocator(err error) Locator {
	return LocatorFunc(func(context.Context) (model.Coordinates, error) {
		return model.Coordinates{}, err
	})
}
