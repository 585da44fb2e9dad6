package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds vision clients by name. It supports config-driven
// instantiation and hot-reload, and provides thread-safe access.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]VisionClient
	logger  *slog.Logger
}

// RegistryConfig drives Reload: one ClientConfig per provider name.
type RegistryConfig struct {
	Providers map[string]ClientConfig
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]VisionClient),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds a vision client by name.
func (r *Registry) Register(name string, client VisionClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.logger.Info("registered vision client", "name", name)
}

// Unregister removes a vision client by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, name)
	r.logger.Info("unregistered vision client", "name", name)
}

// Get returns a vision client by name.
func (r *Registry) Get(name string) (VisionClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("vision client not found: %s", name)
	}
	return client, nil
}

// List returns all registered client names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// Reload rebuilds the registry from configuration. Disabled or
// unbuildable providers are dropped; existing names not in the new
// config are removed.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]VisionClient, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		client, err := buildClient(pc)
		if err != nil {
			r.logger.Warn("skipping vision provider", "name", name, "error", err)
			continue
		}
		next[name] = client
	}

	r.clients = next
	r.logger.Info("vision provider registry reloaded", "providers", len(next))
}

func buildClient(pc ClientConfig) (VisionClient, error) {
	switch pc.Type {
	case OpenAIName:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     pc.APIKey,
			Model:      pc.Model,
			RateLimit:  pc.RateLimit,
			MaxRetries: pc.MaxRetries,
			Timeout:    pc.Timeout,
			BaseURL:    pc.BaseURL,
		}), nil
	case OpenRouterName:
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:    pc.APIKey,
			Model:     pc.Model,
			RateLimit: pc.RateLimit,
			Timeout:   pc.Timeout,
			BaseURL:   pc.BaseURL,
		}), nil
	case MockClientName:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", pc.Type)
	}
}
