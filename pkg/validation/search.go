package validation

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/propertyconnect/engine/pkg/models"
)

// ParsePropertySearch coerces listing query parameters into a typed filter.
// Unknown sort keys are rejected here; bounds mirror the body schemas.
func ParsePropertySearch(values url.Values) (*models.PropertyFilters, Errors) {
	var errs Errors
	f := &models.PropertyFilters{
		Query:     values.Get("query"),
		City:      values.Get("city"),
		State:     values.Get("state"),
		ZipCode:   values.Get("zipCode"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
		Page:      1,
		Limit:     10,
	}

	if t := values.Get("type"); t != "" {
		if !models.ValidPropertyType(t) {
			errs = append(errs, FieldError{Field: "type", Message: "unknown property type"})
		}
		f.Type = t
	}

	if s := values.Get("status"); s != "" {
		if !models.ValidPropertyStatus(s) {
			errs = append(errs, FieldError{Field: "status", Message: "unknown listing status"})
		}
		f.Statuses = []string{s}
	}

	f.MinPrice = parseFloat(values, "minPrice", &errs)
	f.MaxPrice = parseFloat(values, "maxPrice", &errs)
	f.MinArea = parseFloat(values, "minArea", &errs)
	f.MaxArea = parseFloat(values, "maxArea", &errs)
	f.MinBedrooms = parseInt(values, "minBedrooms", &errs)
	f.MaxBedrooms = parseInt(values, "maxBedrooms", &errs)
	f.MinBathrooms = parseInt(values, "minBathrooms", &errs)
	f.MaxBathrooms = parseInt(values, "maxBathrooms", &errs)

	if p := parseInt(values, "page", &errs); p != nil {
		if *p < 1 {
			errs = append(errs, FieldError{Field: "page", Message: "must be at least 1"})
		} else {
			f.Page = *p
		}
	}
	if l := parseInt(values, "limit", &errs); l != nil {
		if *l < 1 || *l > 100 {
			errs = append(errs, FieldError{Field: "limit", Message: "must be between 1 and 100"})
		} else {
			f.Limit = *l
		}
	}

	switch f.SortBy {
	case "", "price", "area", "bedrooms", "bathrooms", "createdAt":
	default:
		errs = append(errs, FieldError{Field: "sortBy", Message: "must be one of [price area bedrooms bathrooms createdAt]"})
	}
	switch f.SortOrder {
	case "", models.SortAsc, models.SortDesc:
	default:
		errs = append(errs, FieldError{Field: "sortOrder", Message: "must be one of [asc desc]"})
	}

	for key, v := range map[string]*float64{"minPrice": f.MinPrice, "maxPrice": f.MaxPrice, "minArea": f.MinArea, "maxArea": f.MaxArea} {
		if v != nil && *v < 0 {
			errs = append(errs, FieldError{Field: key, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}

// ParseAgentSearch coerces agent listing query parameters.
func ParseAgentSearch(values url.Values) (*models.AgentFilters, Errors) {
	var errs Errors
	f := &models.AgentFilters{
		Specialty:  values.Get("specialty"),
		ActiveOnly: true,
		Page:       1,
		Limit:      10,
	}

	// city and state both match membership in the agent's service areas.
	if city := values.Get("city"); city != "" {
		f.ServiceArea = city
	} else if state := values.Get("state"); state != "" {
		f.ServiceArea = state
	}

	if r := parseFloat(values, "rating", &errs); r != nil {
		if *r < 0 || *r > 5 {
			errs = append(errs, FieldError{Field: "rating", Message: "must be between 0 and 5"})
		} else {
			f.MinRating = *r
		}
	}
	if e := parseInt(values, "experience", &errs); e != nil {
		if *e < 0 {
			errs = append(errs, FieldError{Field: "experience", Message: "must be non-negative"})
		} else {
			f.MinExperience = *e
		}
	}
	if v := values.Get("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "isActive", Message: "must be a boolean"})
		} else {
			f.ActiveOnly = active
		}
	}

	if p := parseInt(values, "page", &errs); p != nil && *p >= 1 {
		f.Page = *p
	}
	if l := parseInt(values, "limit", &errs); l != nil && *l >= 1 && *l <= 100 {
		f.Limit = *l
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}

// ParsePage reads bare page/limit parameters with defaults.
func ParsePage(values url.Values) (page, limit int) {
	page, limit = 1, 10
	var errs Errors
	if p := parseInt(values, "page", &errs); p != nil && *p >= 1 {
		page = *p
	}
	if l := parseInt(values, "limit", &errs); l != nil && *l >= 1 && *l <= 100 {
		limit = *l
	}
	return page, limit
}

func parseFloat(values url.Values, key string, errs *Errors) *float64 {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, FieldError{Field: key, Message: fmt.Sprintf("%q is not a number", raw)})
		return nil
	}
	return &v
}

func parseInt(values url.Values, key string, errs *Errors) *int {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, FieldError{Field: key, Message: fmt.Sprintf("%q is not an integer", raw)})
		return nil
	}
	return &v
}
