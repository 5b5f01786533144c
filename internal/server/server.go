package server

import (
	"context"
	"net/http"

	"github.com/fakhrymubarak/weather-dashboard/internal/config"
	"github.com/fakhrymubarak/weather-dashboard/internal/dashboard"
	"github.com/fakhrymubarak/weather-dashboard/internal/handler"
	"github.com/fakhrymubarak/weather-dashboard/internal/middleware"
	"github.com/fakhrymubarak/weather-dashboard/internal/redis"
	"github.com/fakhrymubarak/weather-dashboard/internal/repository"
	"github.com/fakhrymubarak/weather-dashboard/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	redisv9 "github.com/redis/go-redis/v9"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Service     service.WeatherServiceInterface
	Registry    *dashboard.Registry
	RateLimiter *middleware.RateLimiter

	redisClient *redisv9.Client
}

// Close releases the Redis connection, if any.
func (d Deps) Close() error {
	if d.redisClient == nil {
		return nil
	}
	return d.redisClient.Close()
}

// NewDeps wires the production collaborators from cfg. The Redis sequencer
// is used when redis.addr is set, otherwise counters stay in memory.
func NewDeps(ctx context.Context, cfg config.Config) (Deps, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	repo := repository.NewWeatherRepository(repository.Options{
		APIKey:     cfg.APIKey,
		APIURL:     cfg.APIURL,
		HTTPClient: httpClient,
	})
	svc := service.NewWeatherService(repo)

	var (
		seq         dashboard.Sequencer = dashboard.NewMemorySequencer()
		redisClient *redisv9.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(cfg.RedisAddr)
		if err := redis.Ping(ctx, redisClient); err != nil {
			_ = redisClient.Close()
			return Deps{}, err
		}
		seq = redis.NewSequencer(redisClient, cfg.SeqTTL)
	}

	return Deps{
		Service:     svc,
		Registry:    dashboard.NewRegistry(svc, dashboard.OptionsFromConfig(cfg.Dashboard, seq)),
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit),
		redisClient: redisClient,
	}, nil
}

// NewRouter builds the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	weather := handler.NewWeatherHandler(deps.Service)
	r.With(deps.RateLimiter.Middleware(middleware.QueryParam("city"))).Get("/weather", weather.HandleWeather)

	dash := handler.NewDashboardHandler(deps.Registry)
	r.Route("/dashboards", func(r chi.Router) {
		r.With(deps.RateLimiter.Middleware(nil)).Post("/", dash.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", dash.Get)
			r.Delete("/", dash.Delete)
			r.Put("/input", dash.Input)
			r.Group(func(r chi.Router) {
				r.Use(deps.RateLimiter.Middleware(nil))
				r.Post("/search", dash.Search)
				r.Post("/shuffle", dash.Shuffle)
				r.Post("/locate", dash.Locate)
			})
			r.Post("/reset", dash.Reset)
		})
	})
	return r
}

// NewHTTPServer applies the configured timeouts.
func NewHTTPServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
