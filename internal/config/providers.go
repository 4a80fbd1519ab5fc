package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider describes one bikeshare system and where its GBFS feeds live
type Provider struct {
	ID             string `yaml:"id" validate:"required"`
	Name           string `yaml:"name"`
	StatusURL      string `yaml:"status_url" validate:"required,url"`
	InformationURL string `yaml:"information_url" validate:"required,url"`
}

type Providers struct {
	Default string     `yaml:"default"`
	Systems []Provider `yaml:"systems" validate:"required,min=1,dive"`
}

// LoadProviders reads and validates a YAML provider catalogue
func LoadProviders(path string) (*Providers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}
	return ParseProviders(data)
}

func ParseProviders(data []byte) (*Providers, error) {
	var p Providers
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing providers: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate requires every system to have an id and both feed URLs, with unique ids
// and a default that names one of them.
func (p *Providers) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid providers: %w", err)
	}

	seen := make(map[string]bool, len(p.Systems))
	for _, s := range p.Systems {
		if seen[s.ID] {
			return fmt.Errorf("invalid providers: duplicate system id %q", s.ID)
		}
		seen[s.ID] = true
	}
	if p.Default != "" && !seen[p.Default] {
		return fmt.Errorf("invalid providers: default system %q is not defined", p.Default)
	}
	return nil
}

// SingleProvider wraps a pair of feed URLs as a one-entry catalogue
func SingleProvider(id, statusURL, informationURL string) *Providers {
	return &Providers{
		Default: id,
		Systems: []Provider{{ID: id, Name: id, StatusURL: statusURL, InformationURL: informationURL}},
	}
}

// Lookup finds a system by id; an empty id selects the default system
func (p *Providers) Lookup(id string) (Provider, bool) {
	if id == "" {
		id = p.Default
	}
	if id == "" && len(p.Systems) > 0 {
		return p.Systems[0], true
	}
	for _, s := range p.Systems {
		if s.ID == id {
			return s, true
		}
	}
	return Provider{}, false
}
