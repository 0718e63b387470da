package llm

import (
	"fmt"
	"sync"

	"github.com/asjidimtiaz/leadqual/internal/logging"
)

// Registry manages completion provider clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client // provider name → client
	defName string
	log     *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name. The first registered
// provider becomes the default.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	if r.defName == "" {
		r.defName = name
	}
	r.log.Info().Str("provider", name).Msg("registered completion provider")
}

// SetDefault selects the provider returned by Default.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defName = name
}

// Get returns the client for the given provider name, or the default when
// name is empty.
func (r *Registry) Get(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defName
	}
	if c, ok := r.clients[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no completion provider %q", name)
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	return names
}
