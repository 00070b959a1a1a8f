package profession

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// Registry holds the professions known to a colony
type Registry struct {
	mu      sync.RWMutex
	configs map[string]*Config
	order   []string
}

// NewRegistry validates and registers configs
func NewRegistry(catalog *resource.Catalog, configs ...*Config) (*Registry, error) {
	r := &Registry{configs: make(map[string]*Config)}
	for _, c := range configs {
		if err := r.Register(catalog, c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds one profession
func (r *Registry) Register(catalog *resource.Catalog, c *Config) error {
	if c == nil {
		return shared.NewValidationError("profession", "nil config")
	}
	if err := c.Validate(catalog); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.configs[c.ID]; dup {
		return shared.NewValidationError("id", fmt.Sprintf("profession %s registered twice", c.ID))
	}
	r.configs[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// Get returns the config for id
func (r *Registry) Get(id string) (*Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[id]
	return c, ok
}

// IDs lists professions in registration order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
