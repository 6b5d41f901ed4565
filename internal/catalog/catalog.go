// Package catalog holds the categorical domains and date window shared by the
// dataset generator, the dashboard filter options and the promotion store.
package catalog

import (
	"slices"
	"time"
)

// All is the filter sentinel meaning "no constraint on this dimension".
const All = "All"

// NoPromotion is the promo event recorded for transactions outside any promotion.
const NoPromotion = "None"

type Catalog struct {
	Start time.Time
	End   time.Time

	Countries     []string
	JobTitles     []string
	Products      []string
	Regions       []string
	PromoEvents   []string
	Salespeople   []string
	Channels      []string
	AgeGroups     []string
	JobStatuses   []string
	JobPriorities []string
	LogTypes      []string
	PromoTargets  []string
	Segments      []string
}

func Default() *Catalog {
	return &Catalog{
		Start: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Countries: []string{
			"South Africa", "Botswana", "Namibia", "Zambia", "Libya", "Malawi", "Cameroon", "Niger", "Sudan", "Togo",
			"Democratic Republic of Congo", "Kenya", "Algeria", "Ethiopia", "Morocco", "Senegal", "Rwanda", "Tunisia",
			"Zimbabwe", "Mozambique", "Lesotho", "Swaziland", "Angola", "Egypt", "Ghana", "Nigeria",
		},
		JobTitles: []string{
			"Software Engineer", "Data Scientist", "IT Support Specialist", "Network Engineer", "Systems Analyst",
			"DevOps Engineer", "Cybersecurity Analyst", "Cloud Engineer", "Database Administrator", "AI/ML Engineer",
			"Web Developer", "Mobile App Developer", "IT Project Manager", "Computer Engineer", "Embedded Systems Engineer",
		},
		Products: []string{
			"Antivirus Software", "Cloud Storage Subscription", "DevOps Platform", "Project Management Tool",
			"AI/ML Toolkit", "Data Visualization Software", "CRM Software", "ERP System", "Cybersecurity Suite",
			"Database Management System", "API Integration Tool", "Code Repository Hosting", "Virtual Machine Instance",
			"Container Orchestration Service", "Cloud IDE",
		},
		Regions:     []string{"North Africa", "East Africa", "Central Africa", "West Africa", "Southern Africa"},
		PromoEvents: []string{"Discount", "Flash Sale", "Buy1Get1", NoPromotion},
		Salespeople: []string{
			"John Doe", "Jane Smith", "Alex Brown", "Emily Davis", "Michael Chen",
			"Sarah Lee", "David Kim", "Laura Wilson", "Chris Taylor", "Anna Patel",
		},
		Channels:      []string{"LinkedIn", "Facebook", "Twitter", "Email", "Direct"},
		AgeGroups:     []string{"18-25", "26-35", "36-45", "46+"},
		JobStatuses:   []string{"Pending", "In Progress", "Completed"},
		JobPriorities: []string{"Low", "Medium", "High"},
		LogTypes:      []string{"Info", "Error", "Warning"},
		PromoTargets:  []string{All, "New Users", "Enterprise"},
		Segments:      []string{All, "age_group", "region", "salesperson"},
	}
}

// WithWindow returns a copy of the catalog covering [start, end].
func (c *Catalog) WithWindow(start, end time.Time) *Catalog {
	cp := *c
	cp.Start = start
	cp.End = end
	return &cp
}

// RegionFor maps a country onto the region cycle by its position in Countries.
// Unknown countries map to "".
func (c *Catalog) RegionFor(country string) string {
	idx := slices.Index(c.Countries, country)
	if idx < 0 || len(c.Regions) == 0 {
		return ""
	}
	return c.Regions[idx%len(c.Regions)]
}

// Days enumerates every calendar day of the window, both ends included.
func (c *Catalog) Days() []time.Time {
	if c.End.Before(c.Start) {
		return nil
	}
	days := make([]time.Time, 0, c.DayCount())
	for d := c.Start; !d.After(c.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (c *Catalog) DayCount() int {
	if c.End.Before(c.Start) {
		return 0
	}
	return int(c.End.Sub(c.Start).Hours()/24) + 1
}

// KeySpace is the number of distinct uniqueness keys the generator can draw.
func (c *Catalog) KeySpace() uint64 {
	n := uint64(c.DayCount())
	for _, size := range []int{
		len(c.Countries), len(c.Products), len(c.JobTitles),
		len(c.PromoEvents), len(c.Salespeople), len(c.Channels),
	} {
		n *= uint64(size)
	}
	return n
}

// YearDays is the number of days a calendar year contributes to growth
// normalization. The window's final year counts only up to the window end
// unless the window closes on Dec 31.
func (c *Catalog) YearDays(year int) int {
	if year == c.End.Year() && !(c.End.Month() == time.December && c.End.Day() == 31) {
		return c.End.YearDay()
	}
	return 365
}

func (c *Catalog) HasRegion(v string) bool      { return slices.Contains(c.Regions, v) }
func (c *Catalog) HasSalesperson(v string) bool { return slices.Contains(c.Salespeople, v) }
func (c *Catalog) HasChannel(v string) bool     { return slices.Contains(c.Channels, v) }
func (c *Catalog) HasProduct(v string) bool     { return slices.Contains(c.Products, v) }
func (c *Catalog) HasSegment(v string) bool     { return slices.Contains(c.Segments, v) }
func (c *Catalog) HasPromoTarget(v string) bool { return slices.Contains(c.PromoTargets, v) }
