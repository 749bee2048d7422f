package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	catalogCacheKey = "catalog:active"
	catalogCacheTTL = 5 * time.Minute
)

// CatalogService owns the sellable service catalog: seeding it from the
// bundled definitions, listing it with a short cache in front, and resolving
// loose chat references like "one day pass" to a concrete service.
type CatalogService struct {
	services ServiceStore
	cache    Cache
	logger   *logrus.Logger
}

func NewCatalogService(services ServiceStore, cache Cache, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		services: services,
		cache:    cache,
		logger:   logger,
	}
}

type seedFile struct {
	Services []seedService `yaml:"services"`
}

type seedService struct {
	Name            string   `yaml:"name"`
	ServiceType     string   `yaml:"service_type"`
	Description     string   `yaml:"description"`
	Price           float64  `yaml:"price"`
	DurationDays    int      `yaml:"duration_days"`
	DataAllowanceMB *int     `yaml:"data_allowance_mb"`
	Features        []string `yaml:"features"`
}

// Seed inserts catalog entries from the YAML definitions file, skipping any
// service that already exists by name.
func (s *CatalogService) Seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog seed: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog seed: %w", err)
	}

	seeded := 0
	for _, entry := range file.Services {
		existing, err := s.services.FindByName(ctx, entry.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		svc := &models.Service{
			Name:            entry.Name,
			ServiceType:     models.ServiceType(entry.ServiceType),
			Description:     entry.Description,
			Price:           entry.Price,
			DurationDays:    entry.DurationDays,
			DataAllowanceMB: entry.DataAllowanceMB,
			Features:        entry.Features,
			IsActive:        true,
		}
		if err := s.services.Create(ctx, svc); err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		s.logger.WithField("count", seeded).Info("Seeded service catalog")
	}
	return nil
}

// List returns the active catalog ordered by price ascending.
func (s *CatalogService) List(ctx context.Context) ([]*models.Service, error) {
	if s.cache != nil {
		var cached []*models.Service
		if err := s.cache.GetJSON(ctx, catalogCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	services, err := s.services.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(services) > 0 {
		if err := s.cache.Set(ctx, catalogCacheKey, services, catalogCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache catalog")
		}
	}

	return services, nil
}

// Match resolves a loose service reference against the active catalog.
// Returns nil when nothing matches.
func (s *CatalogService) Match(ctx context.Context, query string) (*models.Service, error) {
	services, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return MatchService(services, query), nil
}

// MatchService picks a service for a loose reference. The input must be
// ordered by price ascending so the cheapest candidate wins. Lookup order:
// canonical keys, duration and type keywords, then name substring.
func MatchService(services []*models.Service, query string) *models.Service {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	switch q {
	case "1_day":
		return firstByDuration(services, 1)
	case "10_day":
		return firstByDuration(services, 10)
	case "30_day":
		return firstByDuration(services, 30)
	case "international_pass":
		return firstByType(services, models.ServiceTypeInternationalPass)
	}

	// A recognized keyword binds the lookup; if no active service fills it,
	// the reference stays unresolved rather than drifting to a name match.
	switch {
	case containsAny(q, "1 day", "1day", "one day"):
		return firstByDuration(services, 1)
	case containsAny(q, "10 day", "10day", "ten day", "week"):
		return firstByDuration(services, 10)
	case containsAny(q, "30 day", "30day", "thirty day", "month"):
		return firstByDuration(services, 30)
	case containsAny(q, "international", "pass"):
		return firstByType(services, models.ServiceTypeInternationalPass)
	}

	for _, svc := range services {
		if strings.Contains(strings.ToLower(svc.Name), q) {
			return svc
		}
	}

	return nil
}

func firstByDuration(services []*models.Service, days int) *models.Service {
	for _, svc := range services {
		if svc.DurationDays == days {
			return svc
		}
	}
	return nil
}

func firstByType(services []*models.Service, serviceType models.ServiceType) *models.Service {
	for _, svc := range services {
		if svc.ServiceType == serviceType {
			return svc
		}
	}
	return nil
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
