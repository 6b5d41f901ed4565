package models

import "time"

// Record is one row of the synthetic sales log.
type Record struct {
	Date             time.Time
	Country          string
	Region           string
	Product          string
	JobTitle         string
	Sales            float64
	UserEngagement   int
	PromoEvent       string
	Converted        bool
	Salesperson      string
	MarketingChannel string
	SalesTarget      float64
	UnitPrice        float64

	// Derived after load.
	Cost            float64
	ProfitMargin    float64
	AgeGroup        string
	SessionDuration float64
	JobStatus       string
	JobPriority     string
	LogType         string
	Month           string
	Quantity        int
	Details         string
}

// Key is the uniqueness key of a generated record.
type Key struct {
	Country     string
	Product     string
	JobTitle    string
	PromoEvent  string
	Date        time.Time
	Salesperson string
	Channel     string
}

func (r Record) Key() Key {
	return Key{
		Country:     r.Country,
		Product:     r.Product,
		JobTitle:    r.JobTitle,
		PromoEvent:  r.PromoEvent,
		Date:        r.Date,
		Salesperson: r.Salesperson,
		Channel:     r.MarketingChannel,
	}
}

// Filter is the global dashboard selection. Zero dates are unbounded and
// empty or "All" dimensions are unconstrained.
type Filter struct {
	StartDate   time.Time
	EndDate     time.Time
	Region      string
	Salesperson string
	Channel     string
}
