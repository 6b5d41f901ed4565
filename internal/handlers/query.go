package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	dateLayout      = "2006-01-02"
	defaultLogLimit = 5
	maxLogLimit     = 500
)

// selection is the global filter state. The JSON API reads it from the query
// string, the SSE endpoints from datastar signals.
type selection struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Region      string `json:"region"`
	Salesperson string `json:"salesperson"`
	Channel     string `json:"channel"`
	Product     string `json:"product"`
	Segment     string `json:"segment"`
	Offset      int    `json:"offset"`
	Limit       int    `json:"limit"`
}

func selectionFromQuery(r *http.Request) (selection, error) {
	q := r.URL.Query()
	s := selection{
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		Region:      q.Get("region"),
		Salesperson: q.Get("salesperson"),
		Channel:     q.Get("channel"),
		Product:     q.Get("product"),
		Segment:     q.Get("segment"),
	}

	var err error
	if s.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return selection{}, err
	}
	if s.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return selection{}, err
	}
	return s, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequestWrap(err, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// query validates the selection against the catalog. A start date after the
// end date is accepted and simply matches nothing.
func (s selection) query(cat *catalog.Catalog) (services.DashboardQuery, error) {
	start, err := dateParam(s.StartDate, "start_date")
	if err != nil {
		return services.DashboardQuery{}, err
	}
	end, err := dateParam(s.EndDate, "end_date")
	if err != nil {
		return services.DashboardQuery{}, err
	}

	checks := []struct {
		name  string
		value string
		known func(string) bool
	}{
		{"region", s.Region, cat.HasRegion},
		{"salesperson", s.Salesperson, cat.HasSalesperson},
		{"channel", s.Channel, cat.HasChannel},
	}
	for _, c := range checks {
		if c.value != "" && c.value != catalog.All && !c.known(c.value) {
			return services.DashboardQuery{}, errors.Validation(fmt.Sprintf("unknown %s %q", c.name, c.value))
		}
	}

	if s.Product != "" && !cat.HasProduct(s.Product) {
		return services.DashboardQuery{}, errors.Validation(fmt.Sprintf("unknown product %q", s.Product))
	}

	segment := s.Segment
	if segment == "" {
		segment = catalog.All
	}
	if !cat.HasSegment(segment) {
		return services.DashboardQuery{}, errors.Validation(fmt.Sprintf("unknown segment %q", s.Segment))
	}

	if s.Offset < 0 || s.Limit < 0 {
		return services.DashboardQuery{}, errors.Validation("offset and limit must not be negative")
	}
	limit := s.Limit
	if limit == 0 {
		limit = defaultLogLimit
	}

	return services.DashboardQuery{
		Filter: models.Filter{
			StartDate:   start,
			EndDate:     end,
			Region:      s.Region,
			Salesperson: s.Salesperson,
			Channel:     s.Channel,
		},
		Product: s.Product,
		Segment: segment,
		Offset:  s.Offset,
		Limit:   min(limit, maxLogLimit),
	}, nil
}

func dateParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errors.BadRequestWrap(err, fmt.Sprintf("%s must be a YYYY-MM-DD date", name))
	}
	return t, nil
}
