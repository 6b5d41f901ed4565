package handlers

import (
	"html/template"
	"strings"
)

var fragmentFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

var overviewTemplate = template.Must(template.New("overview").Parse(`
<div id="overview-kpis" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Sales</span><span class="kpi-value">{{.TotalSalesDisplay}}</span></div>
<div class="kpi-card"><span class="kpi-label">Conversion Rate</span><span class="kpi-value">{{.ConversionDisplay}}</span></div>
<div class="kpi-card"><span class="kpi-label">Growth</span><span class="kpi-value">{{.GrowthDisplay}}</span></div>
<div class="kpi-card tone-{{.TeamStatusTone}}"><span class="kpi-label">Team Status</span><span class="kpi-value">{{.TeamStatus}}</span></div>
</div>`))

var productsTemplate = template.Must(template.New("products").Parse(`
<div id="products-kpis" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Top Product</span><span class="kpi-value">{{.TopProduct}}</span></div>
<div class="kpi-card"><span class="kpi-label">Lowest Product</span><span class="kpi-value">{{.LowProduct}}</span></div>
<div class="kpi-card"><span class="kpi-label">Avg Profit Margin</span><span class="kpi-value">{{.AvgProfitMarginDisplay}}</span></div>
{{with .Selected}}<div class="kpi-card"><span class="kpi-label">{{.Product}}</span><span class="kpi-value">{{printf "%.2f" .Performance}}% of target</span></div>{{end}}
</div>`))

var engagementTemplate = template.Must(template.New("engagement").Parse(`
<div id="engagement-kpis" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Daily Active Users</span><span class="kpi-value">{{.DAUDisplay}}</span></div>
<div class="kpi-card"><span class="kpi-label">Avg Session Duration</span><span class="kpi-value">{{.SessionDisplay}}</span></div>
<div class="kpi-card"><span class="kpi-label">Retention Rate</span><span class="kpi-value">{{.RetentionDisplay}}</span></div>
</div>`))

var promotionsTemplate = template.Must(template.New("promotions").Parse(`
<div id="promotions-kpis" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Redemptions</span><span class="kpi-value">{{.RedemptionsDisplay}}</span></div>
<div class="kpi-card"><span class="kpi-label">Promotion ROI</span><span class="kpi-value">{{.ROIDisplay}}</span></div>
</div>`))

var promotionTableTemplate = template.Must(template.New("promotionTable").Parse(`
<div id="promotions-table">
<table class="modern-table">
<thead><tr><th>Promotion</th><th>Start</th><th>End</th><th>Target</th><th>Channel</th><th>Redemption Rate</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Name}}</td>
<td>{{.StartDate.Format "2006-01-02"}}</td>
<td>{{.EndDate.Format "2006-01-02"}}</td>
<td>{{.Target}}</td>
<td>{{if .Channel}}{{.Channel}}{{else}}-{{end}}</td>
<td>{{printf "%.1f" .RedemptionRate}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var logsTemplate = template.Must(template.New("logs").Funcs(fragmentFuncs).Parse(`
<div id="logs-table">
<table class="modern-table">
<thead><tr><th>Date</th><th>Country</th><th>Salesperson</th><th>Channel</th><th>Details</th></tr></thead>
<tbody>
{{range .Entries}}<tr>
<td>{{.Date}}</td>
<td>{{.Country}}</td>
<td>{{.Salesperson}}</td>
<td>{{.MarketingChannel}}</td>
<td>{{.Details}}</td>
</tr>{{end}}
</tbody>
</table>
<p class="pager">{{if .Entries}}Showing {{add .Offset 1}}-{{add .Offset (len .Entries)}} of {{.Total}}{{else}}No log entries{{end}}</p>
</div>`))

var salespeopleTemplate = template.Must(template.New("salespeople").Parse(`
<div id="salespeople-kpis" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Top Salesperson</span><span class="kpi-value">{{.TopSalesperson}}</span></div>
<div class="kpi-card"><span class="kpi-label">Lowest Salesperson</span><span class="kpi-value">{{.LowSalesperson}}</span></div>
</div>`))

var promoMessageTemplate = template.Must(template.New("promoMessage").Parse(
	`<div id="promo-message" class="{{if .OK}}message-success{{else}}message-error{{end}}">{{.Text}}</div>`))

var filterErrorTemplate = template.Must(template.New("filterError").Parse(
	`<div id="filter-error" class="message-error">{{.}}</div>`))

type message struct {
	OK   bool
	Text string
}

func render(t *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := t.Execute(&buf, data)
	return buf.String(), err
}
