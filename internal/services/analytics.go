package services

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

const dateLayout = "2006-01-02"

// PromotionLister exposes the promotion campaigns shown next to the
// promotion KPIs.
type PromotionLister interface {
	List() []models.Promotion
}

// DashboardQuery is the full selection behind one dashboard refresh.
type DashboardQuery struct {
	Filter  models.Filter
	Product string
	Segment string
	Offset  int
	Limit   int
}

// Analytics serves every dashboard view from one in-memory table. The table
// is replaced wholesale by SetData and never mutated in place.
type Analytics struct {
	mu         sync.RWMutex
	records    []models.Record
	loadedAt   time.Time
	catalog    *catalog.Catalog
	promotions PromotionLister
	logger     *slog.Logger
}

func NewAnalytics(cat *catalog.Catalog, promotions PromotionLister) *Analytics {
	return &Analytics{
		catalog:    cat,
		promotions: promotions,
		logger:     slog.Default(),
	}
}

func (a *Analytics) SetLogger(logger *slog.Logger) {
	a.logger = logger
}

func (a *Analytics) SetData(records []models.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = records
	a.loadedAt = time.Now()
}

func (a *Analytics) Catalog() *catalog.Catalog {
	return a.catalog
}

func (a *Analytics) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

func (a *Analytics) table() []models.Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records
}

// Filter returns the rows matching every constrained dimension of f.
func (a *Analytics) Filter(f models.Filter) []models.Record {
	return filterRecords(a.table(), f)
}

func filterRecords(records []models.Record, f models.Filter) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r models.Record, f models.Filter) bool {
	if !f.StartDate.IsZero() && r.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && r.Date.After(f.EndDate) {
		return false
	}
	if constrained(f.Region) && r.Region != f.Region {
		return false
	}
	if constrained(f.Salesperson) && r.Salesperson != f.Salesperson {
		return false
	}
	if constrained(f.Channel) && r.MarketingChannel != f.Channel {
		return false
	}
	return true
}

func constrained(v string) bool {
	return v != "" && v != catalog.All
}

func (a *Analytics) Overview(f models.Filter) models.OverviewView {
	return overview(a.Filter(f), a.catalog.YearDays)
}

func (a *Analytics) Products(f models.Filter, product string) models.ProductsView {
	return products(a.Filter(f), product)
}

func (a *Analytics) Regions(f models.Filter) models.RegionsView {
	return regions(a.Filter(f))
}

func (a *Analytics) Engagement(f models.Filter, segment string) models.EngagementView {
	return engagement(a.Filter(f), segment)
}

func (a *Analytics) Promotions(f models.Filter) models.PromotionsView {
	view := promotionsView(a.Filter(f))
	view.Promotions = a.promotionList()
	return view
}

func (a *Analytics) Logs(f models.Filter, offset, limit int) models.LogPage {
	return logs(a.Filter(f), offset, limit)
}

func (a *Analytics) Salespeople(f models.Filter) models.SalespeopleView {
	return salespeople(a.Filter(f))
}

func (a *Analytics) promotionList() []models.Promotion {
	if a.promotions == nil {
		return []models.Promotion{}
	}
	return a.promotions.List()
}

// Dashboard filters once and computes every panel concurrently.
func (a *Analytics) Dashboard(ctx context.Context, q DashboardQuery) (models.DashboardView, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.dashboard")
	defer func() {
		span.Finish()
		observability.Logger(ctx, a.logger).Debug("dashboard computed", "span", span)
	}()

	rows := a.Filter(q.Filter)
	span.SetTag("rows", strconv.Itoa(len(rows)))

	var view models.DashboardView
	g, gctx := errgroup.WithContext(ctx)
	panel := func(compute func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			compute()
			return nil
		})
	}

	panel(func() { view.Overview = overview(rows, a.catalog.YearDays) })
	panel(func() { view.Products = products(rows, q.Product) })
	panel(func() { view.Regions = regions(rows) })
	panel(func() { view.Engagement = engagement(rows, q.Segment) })
	panel(func() {
		view.Promotions = promotionsView(rows)
		view.Promotions.Promotions = a.promotionList()
	})
	panel(func() { view.Logs = logs(rows, q.Offset, q.Limit) })
	panel(func() { view.Salespeople = salespeople(rows) })

	if err := g.Wait(); err != nil {
		span.SetError(err)
		return models.DashboardView{}, err
	}

	view.GeneratedAt = time.Now().UTC()
	return view, nil
}

// FilterOptions lists the values the global filter controls offer. Dates
// span the loaded data, falling back to the catalog window when empty.
func (a *Analytics) FilterOptions() models.FilterOptions {
	minDate, maxDate := a.catalog.Start, a.catalog.End
	if rows := a.table(); len(rows) > 0 {
		minDate, maxDate = rows[0].Date, rows[0].Date
		for _, r := range rows[1:] {
			if r.Date.Before(minDate) {
				minDate = r.Date
			}
			if r.Date.After(maxDate) {
				maxDate = r.Date
			}
		}
	}

	return models.FilterOptions{
		MinDate:      minDate.Format(dateLayout),
		MaxDate:      maxDate.Format(dateLayout),
		Regions:      withAll(a.catalog.Regions),
		Salespeople:  withAll(a.catalog.Salespeople),
		Channels:     withAll(a.catalog.Channels),
		Products:     slices.Clone(a.catalog.Products),
		Segments:     slices.Clone(a.catalog.Segments),
		PromoTargets: slices.Clone(a.catalog.PromoTargets),
	}
}

func withAll(values []string) []string {
	return append([]string{catalog.All}, values...)
}

// Stats reports table metadata for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count": len(a.records),
		"loaded_at":    a.loadedAt,
		"window_start": a.catalog.Start.Format(dateLayout),
		"window_end":   a.catalog.End.Format(dateLayout),
		"countries":    len(a.catalog.Countries),
		"products":     len(a.catalog.Products),
		"regions":      len(a.catalog.Regions),
		"salespeople":  len(a.catalog.Salespeople),
	}
}
