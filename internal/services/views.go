package services

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/models"
)

const (
	notAvailable     = "N/A"
	minGrowth        = 5.0
	maxGrowth        = 100.0
	onTrackPercent   = 100.0
	atRiskPercent    = 60.0
	yellowToneFloor  = 80.0
	retainedAbove    = 5
	topJobTitleCount = 5
)

func overview(rows []models.Record, yearDays func(int) int) models.OverviewView {
	var totalSales, totalTarget float64
	converted := 0
	byDate := make(map[time.Time]float64)
	byRegion := make(map[string]float64)

	for _, r := range rows {
		totalSales += r.Sales
		totalTarget += r.SalesTarget
		if r.Converted {
			converted++
		}
		byDate[r.Date] += r.Sales
		byRegion[r.Region] += r.Sales
	}

	view := models.OverviewView{
		TotalSales:     totalSales,
		TotalTarget:    totalTarget,
		ConversionRate: percentOf(converted, len(rows)),
		Growth:         clampGrowth(rawGrowth(rows, yearDays)),
		SalesTrend:     datePoints(byDate),
		RegionSales:    categoryValues(byRegion),
	}
	if totalTarget > 0 {
		view.SalesPerformance = totalSales / totalTarget * 100
	}
	view.TeamStatus = teamStatus(view.SalesPerformance)
	view.TeamStatusTone = teamStatusTone(view.SalesPerformance)
	view.TotalSalesDisplay = formatCurrency(view.TotalSales)
	view.ConversionDisplay = formatPercent(view.ConversionRate)
	view.GrowthDisplay = formatPercent(view.Growth)

	return view
}

// rawGrowth compares the last two calendar years present in rows after
// scaling each year's sales up to a full year of coverage.
func rawGrowth(rows []models.Record, yearDays func(int) int) float64 {
	sales := make(map[int]float64)
	days := make(map[int]map[time.Time]struct{})

	for _, r := range rows {
		y := r.Date.Year()
		sales[y] += r.Sales
		if days[y] == nil {
			days[y] = make(map[time.Time]struct{})
		}
		days[y][r.Date] = struct{}{}
	}

	years := slices.Sorted(maps.Keys(sales))
	if len(years) < 2 {
		return 0
	}

	normalized := func(y int) float64 {
		total := sales[y]
		denominator := yearDays(y)
		if denominator <= 0 {
			return total
		}
		if coverage := float64(len(days[y])) / float64(denominator); coverage > 0 {
			total /= coverage
		}
		return total
	}

	prev, last := normalized(years[len(years)-2]), normalized(years[len(years)-1])
	if prev == 0 {
		return math.Inf(1)
	}
	return (last - prev) / prev * 100
}

func clampGrowth(g float64) float64 {
	return max(minGrowth, min(maxGrowth, g))
}

// teamStatus and teamStatusTone use different middle-tier floors:
// the label turns yellow at 60% while the tone waits for 80%.
func teamStatus(performance float64) string {
	switch {
	case performance >= onTrackPercent:
		return "Green: On Track"
	case performance >= atRiskPercent:
		return "Yellow: At Risk"
	default:
		return "Underperforming"
	}
}

func teamStatusTone(performance float64) string {
	switch {
	case performance >= onTrackPercent:
		return "green"
	case performance >= yellowToneFloor:
		return "yellow"
	default:
		return "red"
	}
}

type salesTarget struct {
	sales  float64
	target float64
}

func (st salesTarget) performance() float64 {
	if st.target == 0 {
		return 0
	}
	return st.sales / st.target * 100
}

func products(rows []models.Record, product string) models.ProductsView {
	groups := make(map[string]*salesTarget)
	var marginSum float64

	for _, r := range rows {
		g := groups[r.Product]
		if g == nil {
			g = &salesTarget{}
			groups[r.Product] = g
		}
		g.sales += r.Sales
		g.target += r.SalesTarget
		marginSum += r.ProfitMargin
	}

	view := models.ProductsView{
		Products: make([]models.ProductPerformance, 0, len(groups)),
	}
	for _, name := range slices.Sorted(maps.Keys(groups)) {
		g := groups[name]
		view.Products = append(view.Products, models.ProductPerformance{
			Product:     name,
			Sales:       g.sales,
			SalesTarget: g.target,
			Performance: g.performance(),
		})
	}

	view.TopProduct, view.LowProduct = extremes(view.Products, func(p models.ProductPerformance) (string, float64) {
		return p.Product, p.Sales
	})

	if len(rows) > 0 {
		view.AvgProfitMargin = roundCents(marginSum / float64(len(rows)))
	}
	view.AvgProfitMarginDisplay = formatPercent(view.AvgProfitMargin)

	if i := slices.IndexFunc(view.Products, func(p models.ProductPerformance) bool { return p.Product == product }); i >= 0 {
		selected := view.Products[i]
		view.Selected = &selected
	}

	return view
}

// extremes picks the names with the largest and smallest value. Items arrive
// sorted by name so ties go to the alphabetically first one.
func extremes[T any](items []T, get func(T) (string, float64)) (top, low string) {
	if len(items) == 0 {
		return notAvailable, notAvailable
	}

	top, topValue := get(items[0])
	low, lowValue := top, topValue
	for _, item := range items[1:] {
		name, v := get(item)
		if v > topValue {
			top, topValue = name, v
		}
		if v < lowValue {
			low, lowValue = name, v
		}
	}
	return top, low
}

func regions(rows []models.Record) models.RegionsView {
	byCountry := make(map[string]float64)
	byRegion := make(map[string]float64)
	byAgeRegion := make(map[[2]string]float64)

	for _, r := range rows {
		byCountry[r.Country] += r.Sales
		byRegion[r.Region] += r.Sales
		byAgeRegion[[2]string{r.AgeGroup, r.Region}] += r.Sales
	}

	view := models.RegionsView{
		Countries: categoryValues(byCountry),
		Regions:   categoryValues(byRegion),
		AgeGroups: make([]models.AgeRegionSales, 0, len(byAgeRegion)),
	}
	for _, k := range slices.SortedFunc(maps.Keys(byAgeRegion), comparePair) {
		view.AgeGroups = append(view.AgeGroups, models.AgeRegionSales{
			AgeGroup: k[0],
			Region:   k[1],
			Sales:    byAgeRegion[k],
		})
	}

	return view
}

func engagement(rows []models.Record, segment string) models.EngagementView {
	rowsPerDate := make(map[time.Time]int)
	byDate := make(map[time.Time]float64)
	byJobTitle := make(map[string]float64)
	byCohort := make(map[[2]string]int)
	var sessionSum float64
	retained := 0

	for _, r := range rows {
		rowsPerDate[r.Date]++
		byDate[r.Date] += float64(r.UserEngagement)
		byJobTitle[r.JobTitle] += float64(r.UserEngagement)
		byCohort[[2]string{r.Month, r.Region}] += r.UserEngagement
		sessionSum += r.SessionDuration
		if r.UserEngagement > retainedAbove {
			retained++
		}
	}

	view := models.EngagementView{
		RetentionRate: percentOf(retained, len(rows)),
		Trend:         datePoints(byDate),
		TopJobTitles:  topN(categoryValues(byJobTitle), topJobTitleCount),
		Cohorts:       make([]models.CohortCell, 0, len(byCohort)),
		Segment:       catalog.All,
	}
	if len(rowsPerDate) > 0 {
		view.DailyActiveUsers = len(rows) / len(rowsPerDate)
	}
	if len(rows) > 0 {
		view.AvgSessionDuration = sessionSum / float64(len(rows))
	}

	for _, k := range slices.SortedFunc(maps.Keys(byCohort), comparePair) {
		view.Cohorts = append(view.Cohorts, models.CohortCell{
			Month:      k[0],
			Region:     k[1],
			Engagement: byCohort[k],
		})
	}

	if key := segmentKey(segment); key != nil {
		view.Segment = segment
		view.SegmentTrend = segmentTrend(rows, key)
	}

	view.DAUDisplay = formatCount(view.DailyActiveUsers)
	view.SessionDisplay = formatSeconds(view.AvgSessionDuration)
	view.RetentionDisplay = formatPercent(view.RetentionRate)

	return view
}

func segmentKey(segment string) func(models.Record) string {
	switch segment {
	case "age_group":
		return func(r models.Record) string { return r.AgeGroup }
	case "region":
		return func(r models.Record) string { return r.Region }
	case "salesperson":
		return func(r models.Record) string { return r.Salesperson }
	default:
		return nil
	}
}

type segmentDate struct {
	segment string
	date    time.Time
}

func segmentTrend(rows []models.Record, key func(models.Record) string) []models.SegmentPoint {
	sums := make(map[segmentDate]int)
	for _, r := range rows {
		sums[segmentDate{key(r), r.Date}] += r.UserEngagement
	}

	keys := slices.SortedFunc(maps.Keys(sums), func(a, b segmentDate) int {
		return cmp.Or(cmp.Compare(a.segment, b.segment), a.date.Compare(b.date))
	})

	out := make([]models.SegmentPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.SegmentPoint{
			Segment:    k.segment,
			Date:       k.date.Format(dateLayout),
			Engagement: sums[k],
		})
	}
	return out
}

func promotionsView(rows []models.Record) models.PromotionsView {
	var totalSales, promoSales float64
	promoRows, redemptions := 0, 0
	performance := make(map[segmentDate]float64)
	positive := make(map[string][]float64)

	for _, r := range rows {
		totalSales += r.Sales
		redemptions += r.Quantity
		if r.PromoEvent != catalog.NoPromotion {
			promoSales += r.Sales
			promoRows++
		}
		performance[segmentDate{r.PromoEvent, r.Date}] += r.Sales
		if r.Sales > 0 {
			positive[r.PromoEvent] = append(positive[r.PromoEvent], r.Sales)
		}
	}

	view := models.PromotionsView{
		Redemptions:  redemptions,
		Performance:  make([]models.PromoPoint, 0, len(performance)),
		Distribution: make([]models.PromoDistribution, 0, len(positive)),
		Promotions:   []models.Promotion{},
	}

	if len(rows) > 0 && promoRows > 0 {
		if overallMean := totalSales / float64(len(rows)); overallMean != 0 {
			view.ROI = promoSales / float64(promoRows) / overallMean * 100
		}
	}

	keys := slices.SortedFunc(maps.Keys(performance), func(a, b segmentDate) int {
		return cmp.Or(a.date.Compare(b.date), cmp.Compare(a.segment, b.segment))
	})
	for _, k := range keys {
		view.Performance = append(view.Performance, models.PromoPoint{
			Date:       k.date.Format(dateLayout),
			PromoEvent: k.segment,
			Sales:      performance[k],
		})
	}

	for _, event := range slices.Sorted(maps.Keys(positive)) {
		view.Distribution = append(view.Distribution, boxStats(event, positive[event]))
	}

	view.RedemptionsDisplay = formatCount(view.Redemptions)
	view.ROIDisplay = formatPercent(view.ROI)

	return view
}

// logs projects rows into the log table, newest first, and returns the page
// starting at offset. A non-positive limit returns every remaining row.
func logs(rows []models.Record, offset, limit int) models.LogPage {
	ordered := slices.Clone(rows)
	slices.SortStableFunc(ordered, func(a, b models.Record) int {
		return b.Date.Compare(a.Date)
	})

	offset = max(0, min(offset, len(ordered)))
	end := len(ordered)
	if limit > 0 {
		end = min(offset+limit, len(ordered))
	}

	page := models.LogPage{
		Total:   len(ordered),
		Offset:  offset,
		Limit:   limit,
		Entries: make([]models.LogEntry, 0, end-offset),
	}
	for _, r := range ordered[offset:end] {
		page.Entries = append(page.Entries, models.LogEntry{
			Date:             r.Date.Format(dateLayout),
			Country:          r.Country,
			Salesperson:      r.Salesperson,
			MarketingChannel: r.MarketingChannel,
			Details:          r.Details,
		})
	}

	return page
}

func salespeople(rows []models.Record) models.SalespeopleView {
	groups := make(map[string]*salesTarget)
	trend := make(map[segmentDate]float64)

	for _, r := range rows {
		g := groups[r.Salesperson]
		if g == nil {
			g = &salesTarget{}
			groups[r.Salesperson] = g
		}
		g.sales += r.Sales
		g.target += r.SalesTarget
		trend[segmentDate{r.Salesperson, r.Date}] += r.Sales
	}

	view := models.SalespeopleView{
		People: make([]models.SalespersonPerformance, 0, len(groups)),
		Trend:  make([]models.SalespersonPoint, 0, len(trend)),
	}
	for _, name := range slices.Sorted(maps.Keys(groups)) {
		g := groups[name]
		view.People = append(view.People, models.SalespersonPerformance{
			Salesperson: name,
			Sales:       g.sales,
			SalesTarget: g.target,
			Performance: g.performance(),
		})
	}

	view.TopSalesperson, view.LowSalesperson = extremes(view.People, func(p models.SalespersonPerformance) (string, float64) {
		return p.Salesperson, p.Sales
	})

	keys := slices.SortedFunc(maps.Keys(trend), func(a, b segmentDate) int {
		return cmp.Or(a.date.Compare(b.date), cmp.Compare(a.segment, b.segment))
	})
	for _, k := range keys {
		view.Trend = append(view.Trend, models.SalespersonPoint{
			Date:        k.date.Format(dateLayout),
			Salesperson: k.segment,
			Sales:       trend[k],
		})
	}

	return view
}

func datePoints(sums map[time.Time]float64) []models.DatePoint {
	dates := slices.SortedFunc(maps.Keys(sums), time.Time.Compare)
	out := make([]models.DatePoint, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.DatePoint{Date: d.Format(dateLayout), Value: sums[d]})
	}
	return out
}

func categoryValues(sums map[string]float64) []models.CategoryValue {
	out := make([]models.CategoryValue, 0, len(sums))
	for _, name := range slices.Sorted(maps.Keys(sums)) {
		out = append(out, models.CategoryValue{Name: name, Value: sums[name]})
	}
	return out
}

// topN keeps the n largest values; equal values keep name order.
func topN(values []models.CategoryValue, n int) []models.CategoryValue {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, func(a, b models.CategoryValue) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return sorted[:min(n, len(sorted))]
}

func comparePair(a, b [2]string) int {
	return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
}

func percentOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
