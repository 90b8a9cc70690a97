// Package deployments loads the set of LTIaaS deployments an application talks to.
package deployments

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/samvad-hq/ltiaas-client/pkg/ltiaas"
	"github.com/samvad-hq/ltiaas-client/pkg/registryfile"
)

// DefaultID names the deployment configured through environment variables.
const DefaultID = "default"

// Deployment is one LTIaaS tenant: an origin and the API key issued for it.
type Deployment struct {
	ID        string `json:"id" yaml:"id"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	Enabled   *bool  `json:"enabled" yaml:"enabled"`
}

type file struct {
	Deployments []Deployment `json:"deployments" yaml:"deployments"`
}

// Registry indexes deployments by id.
type Registry struct {
	mu          sync.RWMutex
	deployments []Deployment
	idx         map[string]Deployment
}

// Load reads a YAML/JSON deployments file.
func Load(path string) (*Registry, error) {
	var f file
	if err := registryfile.Load(path, &f); err != nil {
		return nil, fmt.Errorf("deployments file: %w", err)
	}
	return New(f.Deployments)
}

// New sanitizes and validates deps, resolving api_key_env from the environment.
func New(deps []Deployment) (*Registry, error) {
	if len(deps) == 0 {
		return nil, errors.New("no deployments configured")
	}

	reg := &Registry{
		deployments: make([]Deployment, 0, len(deps)),
		idx:         make(map[string]Deployment, len(deps)),
	}
	for i := range deps {
		d := sanitize(deps[i])
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("deployments[%d]: %w", i, err)
		}
		if _, exists := reg.idx[d.ID]; exists {
			return nil, fmt.Errorf("duplicate deployment id %q", d.ID)
		}
		reg.deployments = append(reg.deployments, d)
		reg.idx[d.ID] = d
	}
	return reg, nil
}

func sanitize(d Deployment) Deployment {
	d.ID = strings.TrimSpace(d.ID)
	d.BaseURL = strings.TrimRight(strings.TrimSpace(d.BaseURL), "/")
	d.APIKey = strings.TrimSpace(d.APIKey)
	d.APIKeyEnv = strings.TrimSpace(d.APIKeyEnv)
	if d.APIKey == "" && d.APIKeyEnv != "" {
		d.APIKey = strings.TrimSpace(os.Getenv(d.APIKeyEnv))
	}
	if d.Enabled == nil {
		def := true
		d.Enabled = &def
	}
	return d
}

func validate(d Deployment) error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.BaseURL == "" {
		return fmt.Errorf("base_url is required for deployment %q", d.ID)
	}
	if d.APIKey == "" {
		if d.APIKeyEnv != "" {
			return fmt.Errorf("api key env %s is empty for deployment %q", d.APIKeyEnv, d.ID)
		}
		return fmt.Errorf("api_key or api_key_env is required for deployment %q", d.ID)
	}
	return nil
}

// ByID returns the deployment with the given id.
func (r *Registry) ByID(id string) (Deployment, bool) {
	if r == nil {
		return Deployment{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.idx[strings.TrimSpace(id)]
	return d, ok
}

// Enabled returns the enabled deployments in file order.
func (r *Registry) Enabled() []Deployment {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		if d.Enabled == nil || *d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// Clients builds one ltiaas.Client per enabled deployment, keyed by id.
// optsFor may be nil.
func (r *Registry) Clients(optsFor func(d Deployment) []ltiaas.Option) map[string]*ltiaas.Client {
	enabled := r.Enabled()
	out := make(map[string]*ltiaas.Client, len(enabled))
	for _, d := range enabled {
		var opts []ltiaas.Option
		if optsFor != nil {
			opts = optsFor(d)
		}
		out[d.ID] = ltiaas.New(d.BaseURL, d.APIKey, opts...)
	}
	return out
}
