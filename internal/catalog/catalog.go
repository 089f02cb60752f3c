package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/moviebooking/docs-gateway/config"
	"github.com/moviebooking/docs-gateway/internal/backend"
	"github.com/moviebooking/docs-gateway/internal/strategy"
)

var (
	ErrUnknownService    = errors.New("unknown service")
	ErrNoHealthyBackends = errors.New("no healthy backends")
)

// Service is one documented upstream with its replicas.
type Service struct {
	ID       string
	Name     string
	DocsPath string
	Backends []*backend.Backend

	strategy strategy.Strategy
	mutex    sync.Mutex
}

// DocsURL is the gateway path the viewer loads this service's docs from.
func (s *Service) DocsURL() string {
	return "/" + s.ID + "/api-docs"
}

func (s *Service) healthy() []*backend.Backend {
	healthy := make([]*backend.Backend, 0, len(s.Backends))
	for _, b := range s.Backends {
		if b.IsHealthy() {
			healthy = append(healthy, b)
		}
	}
	return healthy
}

// Catalog holds the configured services in configuration order.
type Catalog struct {
	services []*Service
	byID     map[string]*Service
}

// New builds a catalog from configuration. Every service gets its own
// strategy instance named by strategyName.
func New(services []config.ServiceConfig, strategyName string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Service, len(services))}

	for _, sc := range services {
		if _, dup := c.byID[sc.ID]; dup {
			return nil, fmt.Errorf("service %q configured twice", sc.ID)
		}

		strat, _ := strategy.New(strategyName)
		svc := &Service{
			ID:       sc.ID,
			Name:     sc.Name,
			DocsPath: sc.DocsPath,
			strategy: strat,
		}

		for _, inst := range sc.Instances {
			u, err := url.Parse(inst.URL)
			if err != nil {
				return nil, fmt.Errorf("service %q: parse instance url %q: %w", sc.ID, inst.URL, err)
			}
			svc.Backends = append(svc.Backends, backend.New(u, inst.Weight))
		}

		if len(svc.Backends) == 0 {
			return nil, fmt.Errorf("service %q has no instances", sc.ID)
		}

		c.services = append(c.services, svc)
		c.byID[svc.ID] = svc
	}

	return c, nil
}

// Services returns the services in configuration order.
func (c *Catalog) Services() []*Service {
	out := make([]*Service, len(c.services))
	copy(out, c.services)
	return out
}

func (c *Catalog) Lookup(id string) (*Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// Backends returns every instance of every service.
func (c *Catalog) Backends() []*backend.Backend {
	var all []*backend.Backend
	for _, s := range c.services {
		all = append(all, s.Backends...)
	}
	return all
}

// Reserve picks a healthy instance of the service and counts the request
// against it. Callers must call DecrementConn on the returned backend.
func (c *Catalog) Reserve(id string) (*Service, *backend.Backend, error) {
	svc, ok := c.byID[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownService, id)
	}

	svc.mutex.Lock()
	healthy := svc.healthy()
	if len(healthy) == 0 {
		svc.mutex.Unlock()
		return svc, nil, fmt.Errorf("%w: %s", ErrNoHealthyBackends, id)
	}
	chosen := svc.strategy.SelectBackend(healthy)
	svc.mutex.Unlock()

	if chosen == nil {
		return svc, nil, fmt.Errorf("strategy returned nil backend for %s", id)
	}

	chosen.IncrementConn()
	return svc, chosen, nil
}
