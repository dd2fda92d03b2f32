package repositories

import (
	"fmt"
	"strings"

	"github.com/propertyconnect/engine/pkg/models"
)

// propertySortColumns is the allow-list of dynamic sort keys. Anything else
// falls back to creation time.
var propertySortColumns = map[string]string{
	"price":     "price",
	"area":      "area",
	"bedrooms":  "bedrooms",
	"bathrooms": "bathrooms",
	"createdAt": "created_at",
}

// buildPropertyWhere translates a typed filter into a WHERE clause and its
// positional arguments. It is a pure function so filter translation can be
// unit tested without a live store. The same clause serves both the page
// query and the total count.
func buildPropertyWhere(f *models.PropertyFilters) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE %[1]s OR description ILIKE %[1]s OR address ILIKE %[1]s OR city ILIKE %[1]s)", p))
	}
	if f.Type != "" {
		conds = append(conds, "type = "+arg(f.Type))
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, "status = ANY("+arg(f.Statuses)+")")
	}
	if f.City != "" {
		conds = append(conds, "city ILIKE "+arg("%"+f.City+"%"))
	}
	if f.State != "" {
		conds = append(conds, "state ILIKE "+arg("%"+f.State+"%"))
	}
	if f.ZipCode != "" {
		conds = append(conds, "zip_code = "+arg(f.ZipCode))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.MinBedrooms != nil {
		conds = append(conds, "bedrooms >= "+arg(*f.MinBedrooms))
	}
	if f.MaxBedrooms != nil {
		conds = append(conds, "bedrooms <= "+arg(*f.MaxBedrooms))
	}
	if f.MinBathrooms != nil {
		conds = append(conds, "bathrooms >= "+arg(*f.MinBathrooms))
	}
	if f.MaxBathrooms != nil {
		conds = append(conds, "bathrooms <= "+arg(*f.MaxBathrooms))
	}
	if f.MinArea != nil {
		conds = append(conds, "area >= "+arg(*f.MinArea))
	}
	if f.MaxArea != nil {
		conds = append(conds, "area <= "+arg(*f.MaxArea))
	}
	if f.AgentID != nil {
		conds = append(conds, "agent_id = "+arg(*f.AgentID))
	}
	if f.VerifiedOnly {
		conds = append(conds, "is_verified = TRUE")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// buildPropertyOrder translates the sort key and direction into an ORDER BY
// clause, restricted to the allow-list.
func buildPropertyOrder(f *models.PropertyFilters) string {
	column, ok := propertySortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if f.SortOrder == models.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}
