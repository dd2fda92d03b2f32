package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propertyconnect/engine/pkg/models"
)

func TestBuildPropertyWhere_Empty(t *testing.T) {
	clause, args := buildPropertyWhere(&models.PropertyFilters{})
	assert.Empty(t, clause)
	assert.Empty(t, args)
}

func TestBuildPropertyWhere_Query(t *testing.T) {
	clause, args := buildPropertyWhere(&models.PropertyFilters{Query: "garden"})

	assert.Equal(t, "WHERE (title ILIKE $1 OR description ILIKE $1 OR address ILIKE $1 OR city ILIKE $1)", clause)
	require.Len(t, args, 1)
	assert.Equal(t, "%garden%", args[0])
}

func TestBuildPropertyWhere_CombinedConditions(t *testing.T) {
	minPrice := 100000.0
	maxPrice := 500000.0
	minBeds := 2
	agentID := uuid.New()

	clause, args := buildPropertyWhere(&models.PropertyFilters{
		Type:         "HOUSE",
		Statuses:     []string{"ACTIVE", "PENDING"},
		City:         "Portland",
		MinPrice:     &minPrice,
		MaxPrice:     &maxPrice,
		MinBedrooms:  &minBeds,
		AgentID:      &agentID,
		VerifiedOnly: true,
	})

	assert.Equal(t,
		"WHERE type = $1 AND status = ANY($2) AND city ILIKE $3 AND price >= $4 AND price <= $5 AND bedrooms >= $6 AND agent_id = $7 AND is_verified = TRUE",
		clause)
	require.Len(t, args, 7)
	assert.Equal(t, "HOUSE", args[0])
	assert.Equal(t, []string{"ACTIVE", "PENDING"}, args[1])
	assert.Equal(t, "%Portland%", args[2])
	assert.Equal(t, minPrice, args[3])
	assert.Equal(t, agentID, args[6])
}

func TestBuildPropertyWhere_ZipCodeIsExactMatch(t *testing.T) {
	clause, args := buildPropertyWhere(&models.PropertyFilters{ZipCode: "97201"})

	assert.Equal(t, "WHERE zip_code = $1", clause)
	require.Len(t, args, 1)
	assert.Equal(t, "97201", args[0])
}

func TestBuildPropertyOrder(t *testing.T) {
	tests := []struct {
		sortBy    string
		sortOrder string
		want      string
	}{
		{"", "", "ORDER BY created_at DESC"},
		{"price", "asc", "ORDER BY price ASC"},
		{"price", "desc", "ORDER BY price DESC"},
		{"area", "", "ORDER BY area DESC"},
		{"bedrooms", "asc", "ORDER BY bedrooms ASC"},
		{"createdAt", "asc", "ORDER BY created_at ASC"},
		// Unknown keys and directions fall back to newest-first.
		{"password_hash", "asc", "ORDER BY created_at ASC"},
		{"price", "sideways", "ORDER BY price DESC"},
	}

	for _, tt := range tests {
		got := buildPropertyOrder(&models.PropertyFilters{SortBy: tt.sortBy, SortOrder: tt.sortOrder})
		assert.Equal(t, tt.want, got)
	}
}

func TestPropertyFilters_Paging(t *testing.T) {
	f := &models.PropertyFilters{Page: 3, Limit: 20}
	assert.Equal(t, 20, f.PageSize())
	assert.Equal(t, 40, f.Offset())

	// Zero values normalize to the first default-sized page.
	f = &models.PropertyFilters{}
	assert.Equal(t, 10, f.PageSize())
	assert.Equal(t, 0, f.Offset())

	f = &models.PropertyFilters{Page: 2, Limit: 500}
	assert.Equal(t, 100, f.PageSize())
	assert.Equal(t, 100, f.Offset())
}
