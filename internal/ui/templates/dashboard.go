// Package templates renders the dashboard page shell. Panels are filled in
// afterwards by the datastar SSE endpoints.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
	jsoniter "github.com/json-iterator/go"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/models"
)

type pageData struct {
	Options models.FilterOptions
	Signals string
}

// Dashboard renders the full page with filter controls seeded from opts.
func Dashboard(opts models.FilterOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := initialSignals(opts)
		if err != nil {
			return err
		}
		return page.Execute(w, pageData{Options: opts, Signals: signals})
	})
}

func initialSignals(opts models.FilterOptions) (string, error) {
	product := ""
	if len(opts.Products) > 0 {
		product = opts.Products[0]
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(map[string]any{
		"startDate":      opts.MinDate,
		"endDate":        opts.MaxDate,
		"region":         catalog.All,
		"salesperson":    catalog.All,
		"channel":        catalog.All,
		"product":        product,
		"segment":        catalog.All,
		"offset":         0,
		"limit":          5,
		"logTotal":       0,
		"promoName":      "",
		"promoStartDate": opts.MinDate,
		"promoEndDate":   opts.MaxDate,
		"promoTarget":    catalog.All,
		"promoChannel":   "",
		"overview":       map[string]any{},
		"products":       map[string]any{},
		"regions":        map[string]any{},
		"engagement":     map[string]any{},
		"promotions":     map[string]any{},
		"salespeople":    map[string]any{},
	})
}

var page = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Analytics Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.5/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #1f2430; }
header { background: #1f2430; color: #fff; padding: 1rem 2rem; }
main { padding: 1rem 2rem; display: grid; gap: 1.5rem; }
section { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.filters { display: flex; flex-wrap: wrap; gap: 1rem; align-items: end; }
.filters label { display: flex; flex-direction: column; font-size: .85rem; gap: .25rem; }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; }
.kpi-card { border: 1px solid #e3e5ec; border-radius: 6px; padding: .75rem 1rem; display: flex; flex-direction: column; }
.kpi-label { font-size: .8rem; color: #6b7080; }
.kpi-value { font-size: 1.3rem; font-weight: 600; }
.tone-green { border-left: 4px solid #2e9e5b; }
.tone-yellow { border-left: 4px solid #e0a800; }
.tone-red { border-left: 4px solid #d64545; }
.modern-table { width: 100%; border-collapse: collapse; font-size: .9rem; }
.modern-table th, .modern-table td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #eceef3; }
.message-success { color: #2e9e5b; }
.message-error { color: #d64545; }
.charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(360px, 1fr)); gap: 1rem; }
</style>
<script>
window.dashboardCharts = {};
function drawChart(id, type, points, label, value) {
  const el = document.getElementById(id);
  if (!el || !Array.isArray(points) || typeof Chart === "undefined") { return; }
  const data = {
    labels: points.map(p => p[label]),
    datasets: [{ label: id, data: points.map(p => p[value]) }]
  };
  if (window.dashboardCharts[id]) {
    window.dashboardCharts[id].data = data;
    window.dashboardCharts[id].update();
    return;
  }
  window.dashboardCharts[id] = new Chart(el, { type: type, data: data, options: { animation: false, plugins: { legend: { display: false } } } });
}
</script>
</head>
<body data-signals="{{.Signals}}" data-on-load="@get('/sse/refresh-all')">
<header><h1>Sales Analytics Dashboard</h1></header>
<main>
<section class="filters">
<label>Start date<input type="date" data-bind-start-date min="{{.Options.MinDate}}" max="{{.Options.MaxDate}}"></label>
<label>End date<input type="date" data-bind-end-date min="{{.Options.MinDate}}" max="{{.Options.MaxDate}}"></label>
<label>Region<select data-bind-region>{{range .Options.Regions}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<label>Salesperson<select data-bind-salesperson>{{range .Options.Salespeople}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<label>Channel<select data-bind-channel>{{range .Options.Channels}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<button data-on-click="$offset = 0; @get('/sse/refresh-all')">Apply filters</button>
<div id="filter-error"></div>
</section>

<section>
<h2>Sales Overview</h2>
<div id="overview-kpis" class="kpi-grid"></div>
<div class="charts">
<canvas id="sales-trend" data-effect="drawChart('sales-trend', 'line', $overview.sales_trend, 'date', 'value')"></canvas>
<canvas id="region-sales" data-effect="drawChart('region-sales', 'bar', $overview.region_sales, 'name', 'value')"></canvas>
</div>
</section>

<section>
<h2>Product Performance</h2>
<label>Product<select data-bind-product data-on-change="@get('/sse/products')">{{range .Options.Products}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<div id="products-kpis" class="kpi-grid"></div>
<canvas id="product-sales" data-effect="drawChart('product-sales', 'bar', $products.products, 'product', 'sales')"></canvas>
</section>

<section>
<h2>Regional Sales</h2>
<div class="charts">
<canvas id="country-sales" data-effect="drawChart('country-sales', 'bar', $regions.countries, 'name', 'value')"></canvas>
<canvas id="region-share" data-effect="drawChart('region-share', 'pie', $regions.regions, 'name', 'value')"></canvas>
</div>
</section>

<section>
<h2>User Engagement</h2>
<label>Segment<select data-bind-segment data-on-change="@get('/sse/engagement')">{{range .Options.Segments}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<div id="engagement-kpis" class="kpi-grid"></div>
<div class="charts">
<canvas id="engagement-trend" data-effect="drawChart('engagement-trend', 'line', $engagement.trend, 'date', 'value')"></canvas>
<canvas id="top-job-titles" data-effect="drawChart('top-job-titles', 'bar', $engagement.top_job_titles, 'name', 'value')"></canvas>
</div>
</section>

<section>
<h2>Promotions</h2>
<div id="promotions-kpis" class="kpi-grid"></div>
<div id="promotions-table"></div>
<div class="filters">
<label>Name<input type="text" data-bind-promo-name></label>
<label>Start<input type="date" data-bind-promo-start-date></label>
<label>End<input type="date" data-bind-promo-end-date></label>
<label>Target<select data-bind-promo-target>{{range .Options.PromoTargets}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<label>Channel<select data-bind-promo-channel><option value="">Select channel</option>{{range .Options.Channels}}{{if ne . "All"}}<option value="{{.}}">{{.}}</option>{{end}}{{end}}</select></label>
<button data-on-click="@post('/sse/promotions')">Add promotion</button>
</div>
<div id="promo-message"></div>
</section>

<section>
<h2>Sales Logs</h2>
<div id="logs-table"></div>
<button data-on-click="$offset = Math.max(0, $offset - $limit); @get('/sse/logs')">Previous</button>
<button data-on-click="$offset + $limit < $logTotal && ($offset = $offset + $limit); @get('/sse/logs')">Next</button>
</section>

<section>
<h2>Salesperson Performance</h2>
<div id="salespeople-kpis" class="kpi-grid"></div>
<canvas id="salesperson-sales" data-effect="drawChart('salesperson-sales', 'bar', $salespeople.people, 'salesperson', 'sales')"></canvas>
</section>
</main>
</body>
</html>
`))
