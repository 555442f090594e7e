// Package seed loads the provider directory and service catalog from YAML.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

// File is the on-disk seed document
type File struct {
	Providers []ProviderSeed `yaml:"providers"`
	Services  []ServiceSeed  `yaml:"services"`
}

// ProviderSeed describes one provider. WeeklyTemplate is keyed by English weekday name.
type ProviderSeed struct {
	ID             string              `yaml:"id"`
	Name           string              `yaml:"name"`
	Specialty      string              `yaml:"specialty"`
	WeeklyTemplate map[string][]string `yaml:"weekly_template"`
	ExceptionDates []string            `yaml:"exception_dates"`
}

// ServiceSeed describes one catalog entry. Active defaults to true.
type ServiceSeed struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	DurationMinutes int     `yaml:"duration_minutes"`
	Price           float64 `yaml:"price"`
	Active          *bool   `yaml:"active"`
}

// Load reads a seed file from disk
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded demo directory
func Default() (*File, error) {
	return Parse(defaultSeed)
}

// Parse decodes a seed document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Entities converts the document into domain values, validating every slot and date
func (f *File) Entities() ([]*entities.Provider, []*entities.Service, error) {
	seen := make(map[string]bool, len(f.Providers))
	providers := make([]*entities.Provider, 0, len(f.Providers))
	for _, ps := range f.Providers {
		if ps.ID == "" {
			return nil, nil, fmt.Errorf("provider %q has no id", ps.Name)
		}
		if seen[ps.ID] {
			return nil, nil, fmt.Errorf("duplicate provider id %q", ps.ID)
		}
		seen[ps.ID] = true

		p := &entities.Provider{
			ID:             ps.ID,
			Name:           ps.Name,
			Specialty:      ps.Specialty,
			WeeklyTemplate: entities.WeeklyTemplate{},
			ExceptionDates: entities.DateSet{},
		}
		for dayName, slots := range ps.WeeklyTemplate {
			day, err := entities.ParseWeekday(dayName)
			if err != nil {
				return nil, nil, fmt.Errorf("provider %s: %w", ps.ID, err)
			}
			for _, raw := range slots {
				slot, err := entities.ParseSlot(raw)
				if err != nil {
					return nil, nil, fmt.Errorf("provider %s: %w", ps.ID, err)
				}
				if !entities.IsGridSlot(slot) {
					return nil, nil, fmt.Errorf("provider %s: slot %s is not on the booking grid", ps.ID, slot)
				}
				if !p.WeeklyTemplate.Slots(day).Has(slot) {
					p.ToggleWeeklySlot(day, slot)
				}
			}
		}
		for _, raw := range ps.ExceptionDates {
			d, err := entities.ParseDate(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("provider %s: %w", ps.ID, err)
			}
			p.ExceptionDates[d] = struct{}{}
		}
		providers = append(providers, p)
	}

	catalog := make([]*entities.Service, 0, len(f.Services))
	for _, ss := range f.Services {
		if ss.ID == "" {
			return nil, nil, fmt.Errorf("service %q has no id", ss.Name)
		}
		if ss.DurationMinutes <= 0 {
			return nil, nil, fmt.Errorf("service %s: duration must be positive", ss.ID)
		}
		active := true
		if ss.Active != nil {
			active = *ss.Active
		}
		catalog = append(catalog, &entities.Service{
			ID:              ss.ID,
			Name:            ss.Name,
			DurationMinutes: ss.DurationMinutes,
			Price:           ss.Price,
			IsActive:        active,
		})
	}

	return providers, catalog, nil
}

// Apply upserts the document into the given repositories
func Apply(ctx context.Context, f *File, providerRepo repositories.ProviderRepository, serviceRepo repositories.ServiceRepository) error {
	providers, catalog, err := f.Entities()
	if err != nil {
		return err
	}

	for _, s := range catalog {
		if err := serviceRepo.Save(ctx, s); err != nil {
			return fmt.Errorf("failed to seed service %s: %w", s.ID, err)
		}
	}
	for _, p := range providers {
		if err := providerRepo.Save(ctx, p); err != nil {
			return fmt.Errorf("failed to seed provider %s: %w", p.ID, err)
		}
	}

	log.Info().Int("providers", len(providers)).Int("services", len(catalog)).Msg("seed data applied")
	return nil
}
