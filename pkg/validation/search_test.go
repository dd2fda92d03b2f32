package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propertyconnect/engine/pkg/models"
)

func TestParsePropertySearch_Defaults(t *testing.T) {
	f, errs := ParsePropertySearch(url.Values{})
	require.Empty(t, errs)

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Empty(t, f.Statuses)
	assert.Nil(t, f.MinPrice)
}

func TestParsePropertySearch_FullQuery(t *testing.T) {
	values := url.Values{
		"query":       {"garden"},
		"type":        {"HOUSE"},
		"status":      {"ACTIVE"},
		"city":        {"Portland"},
		"minPrice":    {"100000"},
		"maxPrice":    {"500000"},
		"minBedrooms": {"2"},
		"sortBy":      {"price"},
		"sortOrder":   {"asc"},
		"page":        {"3"},
		"limit":       {"25"},
	}

	f, errs := ParsePropertySearch(values)
	require.Empty(t, errs)

	assert.Equal(t, "garden", f.Query)
	assert.Equal(t, "HOUSE", f.Type)
	assert.Equal(t, []string{"ACTIVE"}, f.Statuses)
	assert.Equal(t, "Portland", f.City)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 100000.0, *f.MinPrice)
	require.NotNil(t, f.MinBedrooms)
	assert.Equal(t, 2, *f.MinBedrooms)
	assert.Equal(t, "price", f.SortBy)
	assert.Equal(t, models.SortAsc, f.SortOrder)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 25, f.Limit)
}

func TestParsePropertySearch_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		field  string
	}{
		{"unknown type", url.Values{"type": {"CASTLE"}}, "type"},
		{"unknown status", url.Values{"status": {"ARCHIVED"}}, "status"},
		{"non-numeric price", url.Values{"minPrice": {"cheap"}}, "minPrice"},
		{"negative price", url.Values{"maxPrice": {"-5"}}, "maxPrice"},
		{"non-integer page", url.Values{"page": {"first"}}, "page"},
		{"zero page", url.Values{"page": {"0"}}, "page"},
		{"oversized limit", url.Values{"limit": {"500"}}, "limit"},
		{"unknown sort key", url.Values{"sortBy": {"color"}}, "sortBy"},
		{"unknown sort order", url.Values{"sortOrder": {"sideways"}}, "sortOrder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, errs := ParsePropertySearch(tt.values)
			assert.Nil(t, f)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestParseAgentSearch_Defaults(t *testing.T) {
	f, errs := ParseAgentSearch(url.Values{})
	require.Empty(t, errs)

	assert.True(t, f.ActiveOnly)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
}

func TestParseAgentSearch_CityWinsOverState(t *testing.T) {
	f, errs := ParseAgentSearch(url.Values{"city": {"Austin"}, "state": {"TX"}})
	require.Empty(t, errs)
	assert.Equal(t, "Austin", f.ServiceArea)

	f, errs = ParseAgentSearch(url.Values{"state": {"TX"}})
	require.Empty(t, errs)
	assert.Equal(t, "TX", f.ServiceArea)
}

func TestParseAgentSearch_Bounds(t *testing.T) {
	f, errs := ParseAgentSearch(url.Values{
		"rating":     {"4.5"},
		"experience": {"10"},
		"isActive":   {"false"},
	})
	require.Empty(t, errs)
	assert.Equal(t, 4.5, f.MinRating)
	assert.Equal(t, 10, f.MinExperience)
	assert.False(t, f.ActiveOnly)

	_, errs = ParseAgentSearch(url.Values{"rating": {"7"}})
	require.NotEmpty(t, errs)
	assert.Equal(t, "rating", errs[0].Field)

	_, errs = ParseAgentSearch(url.Values{"isActive": {"maybe"}})
	require.NotEmpty(t, errs)
	assert.Equal(t, "isActive", errs[0].Field)
}

func TestParsePage(t *testing.T) {
	page, limit := ParsePage(url.Values{})
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = ParsePage(url.Values{"page": {"4"}, "limit": {"50"}})
	assert.Equal(t, 4, page)
	assert.Equal(t, 50, limit)

	// Out-of-range values fall back to the defaults.
	page, limit = ParsePage(url.Values{"page": {"0"}, "limit": {"1000"}})
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}
