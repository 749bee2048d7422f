package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCatalogServices() []*models.Service {
	return []*models.Service{
		{
			ID:           primitive.NewObjectID(),
			Name:         "1-Day International Pass",
			ServiceType:  models.ServiceTypeInternationalPass,
			Price:        1.00,
			DurationDays: 1,
			IsActive:     true,
		},
		{
			ID:           primitive.NewObjectID(),
			Name:         "10-Day International Pass",
			ServiceType:  models.ServiceTypeInternationalPass,
			Price:        35.00,
			DurationDays: 10,
			IsActive:     true,
		},
		{
			ID:           primitive.NewObjectID(),
			Name:         "30-Day International Pass",
			ServiceType:  models.ServiceTypeInternationalPass,
			Price:        50.00,
			DurationDays: 30,
			IsActive:     true,
		},
	}
}

func TestMatchService(t *testing.T) {
	services := testCatalogServices()

	tests := []struct {
		query string
		want  string
	}{
		{"1_day", "1-Day International Pass"},
		{"10_day", "10-Day International Pass"},
		{"30_day", "30-Day International Pass"},
		{"international_pass", "1-Day International Pass"},
		{"one day pass", "1-Day International Pass"},
		{"1 day", "1-Day International Pass"},
		{"1day", "1-Day International Pass"},
		{"ten day pass", "10-Day International Pass"},
		{"a week abroad", "10-Day International Pass"},
		{"thirty day", "30-Day International Pass"},
		{"a month of data", "30-Day International Pass"},
		{"international", "1-Day International Pass"},
		{"30 day international", "30-Day International Pass"},
		// keyword lookup runs before name matching, so "international"
		// resolves to the cheapest pass
		{"30-day international", "1-Day International Pass"},
		{"  1_DAY  ", "1-Day International Pass"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := MatchService(services, tt.query)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestMatchServiceNoMatch(t *testing.T) {
	services := testCatalogServices()

	assert.Nil(t, MatchService(services, ""))
	assert.Nil(t, MatchService(services, "unlimited music"))
	assert.Nil(t, MatchService(nil, "1_day"))
}

func TestMatchServiceKeywordWithoutCandidate(t *testing.T) {
	// A duration keyword pins the lookup to that duration; with no 10-day
	// service on sale the reference stays unresolved instead of drifting to
	// another pass.
	services := []*models.Service{
		{Name: "1-Day International Pass", ServiceType: models.ServiceTypeInternationalPass, Price: 1, DurationDays: 1, IsActive: true},
	}

	assert.Nil(t, MatchService(services, "a week abroad"))
	assert.NotNil(t, MatchService(services, "one day pass"))
}

func TestMatchServiceCheapestWins(t *testing.T) {
	// Two services share a keyword; the price-ascending input order decides.
	services := []*models.Service{
		{Name: "Budget Pass", ServiceType: models.ServiceTypeInternationalPass, Price: 5, DurationDays: 3, IsActive: true},
		{Name: "Premium Pass", ServiceType: models.ServiceTypeInternationalPass, Price: 80, DurationDays: 3, IsActive: true},
	}

	got := MatchService(services, "pass")
	require.NotNil(t, got)
	assert.Equal(t, "Budget Pass", got.Name)
}

func TestCatalogSeed(t *testing.T) {
	seed := `services:
  - name: 1-Day International Pass
    service_type: INTERNATIONAL_PASS
    price: 1.00
    duration_days: 1
    data_allowance_mb: 512
    features:
      - 512MB high-speed data
  - name: 30-Day International Pass
    service_type: INTERNATIONAL_PASS
    price: 50.00
    duration_days: 30
`
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := &fakeServiceStore{}
	catalog := NewCatalogService(store, nil, testLogger())

	require.NoError(t, catalog.Seed(context.Background(), path))
	require.Len(t, store.services, 2)

	first := store.services[0]
	assert.Equal(t, "1-Day International Pass", first.Name)
	assert.Equal(t, models.ServiceTypeInternationalPass, first.ServiceType)
	assert.True(t, first.IsActive)
	require.NotNil(t, first.DataAllowanceMB)
	assert.Equal(t, 512, *first.DataAllowanceMB)

	// Seeding again must not duplicate.
	require.NoError(t, catalog.Seed(context.Background(), path))
	assert.Len(t, store.services, 2)
}

func TestCatalogSeedMissingFile(t *testing.T) {
	catalog := NewCatalogService(&fakeServiceStore{}, nil, testLogger())
	assert.Error(t, catalog.Seed(context.Background(), "/nonexistent/services.yaml"))
}

func TestCatalogListWithoutCache(t *testing.T) {
	store := &fakeServiceStore{services: testCatalogServices()}
	catalog := NewCatalogService(store, nil, testLogger())

	services, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 3)
	assert.Equal(t, "1-Day International Pass", services[0].Name)
}
