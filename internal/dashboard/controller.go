package dashboard

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-dashboard/internal/config"
	"github.com/fakhrymubarak/weather-dashboard/internal/model"
	"github.com/fakhrymubarak/weather-dashboard/internal/repository"
	"github.com/fakhrymubarak/weather-dashboard/internal/service"
	"go.uber.org/zap"
)

var ErrFeatureDisabled = errors.New("feature disabled for this dashboard")

// Options selects the feature set of a dashboard.
type Options struct {
	Geolocation bool
	Shuffle     bool
	// DiscardStale drops responses from superseded triggers. When false the
	// last response to settle wins, whichever trigger it belongs to.
	DiscardStale bool
	DemoCities   []string
	// IdleTTL is how long a Registry keeps a dashboard nobody touches.
	IdleTTL   time.Duration
	Sequencer Sequencer
	// Pick returns an index in [0, n). Defaults to math/rand.
	Pick   func(n int) int
	Logger *zap.SugaredLogger
}

// OptionsFromConfig builds Options from the dashboard section of the config.
func OptionsFromConfig(cfg config.DashboardConfig, seq Sequencer) Options {
	return Options{
		Geolocation:  cfg.Geolocation,
		Shuffle:      cfg.Shuffle,
		DiscardStale: cfg.DiscardStale,
		DemoCities:   cfg.DemoCities,
		IdleTTL:      cfg.IdleTTL,
		Sequencer:    seq,
	}
}

func (o Options) withDefaults() Options {
	if len(o.DemoCities) == 0 {
		o.DemoCities = config.DefaultDemoCities
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = time.Hour
	}
	if o.Sequencer == nil {
		o.Sequencer = NewMemorySequencer()
	}
	if o.Pick == nil {
		o.Pick = rand.IntN
	}
	if o.Logger == nil {
		o.Logger = config.GetLogger()
	}
	return o
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailed
	outcomeStale
)

// Controller owns one DashboardState and drives the weather service in
// response to search, geolocation and shuffle triggers.
type Controller struct {
	id   string
	svc  service.WeatherServiceInterface
	opts Options

	mu    sync.Mutex
	state model.DashboardState
	// latest is the highest token seen; active is the token allowed to
	// write state, 0 when none is.
	latest uint64
	active uint64
}

func NewController(id string, svc service.WeatherServiceInterface, opts Options) *Controller {
	return &Controller{
		id:    id,
		svc:   svc,
		opts:  opts.withDefaults(),
		state: model.DashboardState{ID: id},
	}
}

func (c *Controller) ID() string {
	return c.id
}

// State returns a copy of the current state.
func (c *Controller) State() model.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetCityInput stores the text of the city field without querying.
func (c *Controller) SetCityInput(text string) model.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CityInput = text
	return c.state
}

// Search queries the city currently in the input. A blank input is ignored.
func (c *Controller) Search(ctx context.Context) model.DashboardState {
	city := strings.TrimSpace(c.State().CityInput)
	if city == "" {
		return c.State()
	}
	state, _ := c.run(ctx, model.CityQuery(city), nil)
	return state
}

// SearchCity sets the input and searches it.
func (c *Controller) SearchCity(ctx context.Context, city string) model.DashboardState {
	c.SetCityInput(city)
	return c.Search(ctx)
}

// Shuffle queries a random demo city.
func (c *Controller) Shuffle(ctx context.Context) (model.DashboardState, error) {
	if !c.opts.Shuffle {
		return c.State(), ErrFeatureDisabled
	}
	state, _ := c.shuffle(ctx)
	return state, nil
}

func (c *Controller) shuffle(ctx context.Context) (model.DashboardState, outcome) {
	city := c.opts.DemoCities[c.opts.Pick(len(c.opts.DemoCities))]
	return c.run(ctx, model.CityQuery(city), &city)
}

// Locate reads the device position and queries it. Denial, unavailability or
// a failed coordinate lookup fall back to a demo city.
func (c *Controller) Locate(ctx context.Context, loc Locator) (model.DashboardState, error) {
	if !c.opts.Geolocation {
		return c.State(), ErrFeatureDisabled
	}
	if loc == nil {
		loc = FailingLocator(ErrLocationUnavailable)
	}

	coords, err := loc.Locate(ctx)
	if err != nil {
		c.opts.Logger.Infow("Geolocation failed, using demo city", "dashboard", c.id, "error", err)
		state, _ := c.shuffle(ctx)
		return state, nil
	}

	state, out := c.run(ctx, model.CoordsQuery(coords.Lat, coords.Lon), nil)
	if out != outcomeFailed {
		return state, nil
	}
	c.opts.Logger.Infow("Location lookup failed, using demo city", "dashboard", c.id, "error", state.Error)
	state, _ = c.shuffle(ctx)
	return state, nil
}

// Mount is the on-load flow: geolocation when enabled, otherwise nothing.
func (c *Controller) Mount(ctx context.Context, loc Locator) model.DashboardState {
	if !c.opts.Geolocation {
		return c.State()
	}
	state, _ := c.Locate(ctx, loc)
	return state
}

// Reset returns the dashboard to its initial state. In-flight responses are
// dropped when stale responses are discarded.
func (c *Controller) Reset() model.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = model.DashboardState{ID: c.id}
	c.active = 0
	return c.state
}

// run performs one trigger: take a token, enter loading, query, settle.
// cityInput, when set, replaces the input as part of entering loading.
func (c *Controller) run(ctx context.Context, query model.WeatherQuery, cityInput *string) (model.DashboardState, outcome) {
	token, err := c.opts.Sequencer.Next(ctx, c.id)
	if err != nil {
		c.opts.Logger.Errorw("Failed to obtain request token", "dashboard", c.id, "error", err)
		return c.fail(err), outcomeFailed
	}
	if !c.begin(token, cityInput) {
		c.opts.Logger.Debugw("Trigger superseded before start", "dashboard", c.id, "token", token)
		return c.State(), outcomeStale
	}

	weather, err := c.svc.GetWeather(ctx, query)
	return c.settle(token, weather, err)
}

func (c *Controller) begin(token uint64, cityInput *string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.DiscardStale && token <= c.latest {
		return false
	}
	if token > c.latest {
		c.latest = token
	}
	c.active = token
	if cityInput != nil {
		c.state.CityInput = *cityInput
	}
	c.state.Loading = true
	c.state.Result = nil
	c.state.Error = nil
	c.state.Advice = ""
	return true
}

func (c *Controller) settle(token uint64, weather *model.WeatherResult, err error) (model.DashboardState, outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.DiscardStale && token != c.active {
		c.opts.Logger.Debugw("Discarding stale response", "dashboard", c.id, "token", token, "active", c.active)
		return c.state, outcomeStale
	}

	c.state.Loading = false
	if err != nil {
		c.state.Result = nil
		c.state.Advice = ""
		c.state.Error = repository.ToDashboardError(err)
		return c.state, outcomeFailed
	}
	c.state.Error = nil
	c.state.Result = weather
	c.state.Advice = ClothingAdvice(weather.TemperatureC)
	return c.state, outcomeSuccess
}

// fail settles a trigger that never obtained a token. Any request still in
// flight is older than this trigger, so it loses its claim on the state.
func (c *Controller) fail(err error) model.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = 0
	c.state.Loading = false
	c.state.Result = nil
	c.state.Advice = ""
	c.state.Error = repository.ToDashboardError(err)
	return c.state
}
