package models

import "time"

type DatePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type CategoryValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type OverviewView struct {
	TotalSales        float64         `json:"total_sales"`
	TotalTarget       float64         `json:"total_target"`
	ConversionRate    float64         `json:"conversion_rate"`
	Growth            float64         `json:"growth"`
	SalesPerformance  float64         `json:"sales_performance"`
	TeamStatus        string          `json:"team_status"`
	TeamStatusTone    string          `json:"team_status_tone"`
	TotalSalesDisplay string          `json:"total_sales_display"`
	ConversionDisplay string          `json:"conversion_display"`
	GrowthDisplay     string          `json:"growth_display"`
	SalesTrend        []DatePoint     `json:"sales_trend"`
	RegionSales       []CategoryValue `json:"region_sales"`
}

type ProductPerformance struct {
	Product     string  `json:"product"`
	Sales       float64 `json:"sales"`
	SalesTarget float64 `json:"sales_target"`
	Performance float64 `json:"performance"`
}

type ProductsView struct {
	TopProduct             string               `json:"top_product"`
	LowProduct             string               `json:"low_product"`
	AvgProfitMargin        float64              `json:"avg_profit_margin"`
	AvgProfitMarginDisplay string               `json:"avg_profit_margin_display"`
	Products               []ProductPerformance `json:"products"`
	Selected               *ProductPerformance  `json:"selected,omitempty"`
}

type AgeRegionSales struct {
	AgeGroup string  `json:"age_group"`
	Region   string  `json:"region"`
	Sales    float64 `json:"sales"`
}

type RegionsView struct {
	Countries []CategoryValue  `json:"countries"`
	Regions   []CategoryValue  `json:"regions"`
	AgeGroups []AgeRegionSales `json:"age_groups"`
}

type CohortCell struct {
	Month      string `json:"month"`
	Region     string `json:"region"`
	Engagement int    `json:"user_engagement"`
}

type SegmentPoint struct {
	Segment    string `json:"segment"`
	Date       string `json:"date"`
	Engagement int    `json:"user_engagement"`
}

type EngagementView struct {
	DailyActiveUsers   int             `json:"daily_active_users"`
	AvgSessionDuration float64         `json:"avg_session_duration"`
	RetentionRate      float64         `json:"retention_rate"`
	DAUDisplay         string          `json:"dau_display"`
	SessionDisplay     string          `json:"session_display"`
	RetentionDisplay   string          `json:"retention_display"`
	Trend              []DatePoint     `json:"trend"`
	TopJobTitles       []CategoryValue `json:"top_job_titles"`
	Cohorts            []CohortCell    `json:"cohorts"`
	Segment            string          `json:"segment"`
	SegmentTrend       []SegmentPoint  `json:"segment_trend,omitempty"`
}

type PromoPoint struct {
	Date       string  `json:"date"`
	PromoEvent string  `json:"promo_event"`
	Sales      float64 `json:"sales"`
}

// PromoDistribution summarises converted sales per promo event the way a box
// plot draws them.
type PromoDistribution struct {
	PromoEvent   string    `json:"promo_event"`
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

type PromotionsView struct {
	Redemptions        int                 `json:"redemptions"`
	ROI                float64             `json:"roi"`
	RedemptionsDisplay string              `json:"redemptions_display"`
	ROIDisplay         string              `json:"roi_display"`
	Performance        []PromoPoint        `json:"performance"`
	Distribution       []PromoDistribution `json:"distribution"`
	Promotions         []Promotion         `json:"promotions"`
}

type LogEntry struct {
	Date             string `json:"date"`
	Country          string `json:"country"`
	Salesperson      string `json:"salesperson"`
	MarketingChannel string `json:"marketing_channel"`
	Details          string `json:"details"`
}

type LogPage struct {
	Total   int        `json:"total"`
	Offset  int        `json:"offset"`
	Limit   int        `json:"limit"`
	Entries []LogEntry `json:"entries"`
}

type SalespersonPerformance struct {
	Salesperson string  `json:"salesperson"`
	Sales       float64 `json:"sales"`
	SalesTarget float64 `json:"sales_target"`
	Performance float64 `json:"performance"`
}

type SalespersonPoint struct {
	Date        string  `json:"date"`
	Salesperson string  `json:"salesperson"`
	Sales       float64 `json:"sales"`
}

type SalespeopleView struct {
	TopSalesperson string                   `json:"top_salesperson"`
	LowSalesperson string                   `json:"low_salesperson"`
	People         []SalespersonPerformance `json:"people"`
	Trend          []SalespersonPoint       `json:"trend"`
}

type FilterOptions struct {
	MinDate      string   `json:"min_date"`
	MaxDate      string   `json:"max_date"`
	Regions      []string `json:"regions"`
	Salespeople  []string `json:"salespeople"`
	Channels     []string `json:"channels"`
	Products     []string `json:"products"`
	Segments     []string `json:"segments"`
	PromoTargets []string `json:"promo_targets"`
}

// DashboardView bundles every panel for a single refresh.
type DashboardView struct {
	Overview    OverviewView    `json:"overview"`
	Products    ProductsView    `json:"products"`
	Regions     RegionsView     `json:"regions"`
	Engagement  EngagementView  `json:"engagement"`
	Promotions  PromotionsView  `json:"promotions"`
	Logs        LogPage         `json:"logs"`
	Salespeople SalespeopleView `json:"salespeople"`
	GeneratedAt time.Time       `json:"generated_at"`
}
