package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-dashboard/internal/service"
	"github.com/google/uuid"
)

type entry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry holds the live dashboards of a server, keyed by id. Dashboards
// not touched for Options.IdleTTL are evicted by the cleanup sweep.
type Registry struct {
	svc  service.WeatherServiceInterface
	opts Options

	mu         sync.RWMutex
	dashboards map[string]*entry
}

func NewRegistry(svc service.WeatherServiceInterface, opts Options) *Registry {
	return &Registry{
		svc:        svc,
		opts:       opts.withDefaults(),
		dashboards: make(map[string]*entry),
	}
}

// Create registers a new dashboard in the initial state.
func (r *Registry) Create() *Controller {
	c := NewController(uuid.NewString(), r.svc, r.opts)
	r.mu.Lock()
	r.dashboards[c.ID()] = &entry{controller: c, lastSeen: time.Now()}
	r.mu.Unlock()
	return c
}

// Get returns the dashboard and marks it as used.
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.dashboards[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.controller, true
}

// Delete removes the dashboard and its sequence counter.
func (r *Registry) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	_, ok := r.dashboards[id]
	delete(r.dashboards, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.forget(ctx, id)
	return true
}

func (r *Registry) forget(ctx context.Context, id string) {
	f, ok := r.opts.Sequencer.(forgetter)
	if !ok {
		return
	}
	if err := f.Forget(ctx, id); err != nil {
		r.opts.Logger.Warnw("Failed to drop dashboard sequence", "dashboard", id, "error", err)
	}
}

// cleanup evicts dashboards idle for longer than the idle TTL.
func (r *Registry) cleanup(ctx context.Context, now time.Time) int {
	var evicted []string
	r.mu.Lock()
	for id, e := range r.dashboards {
		if now.Sub(e.lastSeen) > r.opts.IdleTTL {
			delete(r.dashboards, id)
			evicted = append(evicted, id)
		}
	}
	r.mu.Unlock()

	for _, id := range evicted {
		r.forget(ctx, id)
	}
	if len(evicted) > 0 {
		r.opts.Logger.Infow("Evicted idle dashboards", "count", len(evicted))
	}
	return len(evicted)
}

// StartCleanup sweeps idle dashboards every minute until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.cleanup(ctx, now)
			}
		}
	}()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dashboards)
}
