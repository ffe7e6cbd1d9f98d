package sysprop

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInvalidDefinition indicates a definition with an empty key or a malformed key=value pair.
	ErrInvalidDefinition = errors.New("definition key must not be empty")
)

// Lookuper resolves override values by exact key.
type Lookuper interface {
	Lookup(key string) (string, bool)
	Getenv(key string) (string, bool)
}

// Properties layers explicit definitions over the process environment.
// Definitions always win over environment variables of the same name.
type Properties struct {
	mu     sync.RWMutex
	defs   map[string]string
	getenv func(string) (string, bool)
}

// Option configures Properties.
type Option func(*Properties)

// WithEnvironment overrides the environment lookup, primarily for tests.
func WithEnvironment(lookup func(string) (string, bool)) Option {
	return func(p *Properties) {
		p.getenv = lookup
	}
}

// WithDefinitions seeds the definition layer with a copy of defs.
func WithDefinitions(defs map[string]string) Option {
	return func(p *Properties) {
		for k, v := range defs {
			p.defs[k] = v
		}
	}
}

// New creates Properties backed by os.LookupEnv.
func New(opts ...Option) *Properties {
	p := &Properties{
		defs:   make(map[string]string),
		getenv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromEnvironment returns a lookup over a fixed KEY=VALUE list such as os.Environ().
func FromEnvironment(environ []string) func(string) (string, bool) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Lookup returns the definition for key, falling back to the environment.
func (p *Properties) Lookup(key string) (string, bool) {
	p.mu.RLock()
	v, ok := p.defs[key]
	p.mu.RUnlock()
	if ok {
		return v, true
	}
	return p.Getenv(key)
}

// Getenv reads only the environment layer.
func (p *Properties) Getenv(key string) (string, bool) {
	if p.getenv == nil {
		return "", false
	}
	return p.getenv(key)
}

// Set stores a definition. An empty value is a valid definition.
func (p *Properties) Set(key, value string) error {
	if key == "" {
		return ErrInvalidDefinition
	}

	p.mu.Lock()
	p.defs[key] = value
	p.mu.Unlock()

	return nil
}

// Unset removes a definition so the environment becomes visible again.
func (p *Properties) Unset(key string) {
	p.mu.Lock()
	delete(p.defs, key)
	p.mu.Unlock()
}

// Definitions returns a copy of the definition layer.
func (p *Properties) Definitions() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]string, len(p.defs))
	for k, v := range p.defs {
		out[k] = v
	}
	return out
}

// Keys returns the defined keys in sorted order.
func (p *Properties) Keys() []string {
	p.mu.RLock()
	keys := make([]string, 0, len(p.defs))
	for k := range p.defs {
		keys = append(keys, k)
	}
	p.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// ParseDefinition splits a "key=value" pair. A pair without '=' defines key with an empty value.
func ParseDefinition(raw string) (string, string, error) {
	key, value, _ := strings.Cut(raw, "=")
	if key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDefinition, raw)
	}
	return key, value, nil
}
