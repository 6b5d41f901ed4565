// Package dataset builds the synthetic sales log the dashboard serves.
package dataset

import (
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/models"
)

// ErrKeySpaceExhausted is returned when the requested number of unique rows
// cannot be drawn from the catalog.
var ErrKeySpaceExhausted = errors.New("unique key space exhausted")

const (
	conversionProbability = 0.05
	dailyGrowth           = 0.000274 // ~10% a year
	baseTarget            = 10000.0
	monthlyTargetStep     = 0.00833 // ~10% a year, stepped every 30 days
	minUnitPrice          = 20.0
	maxUnitPrice          = 200.0
	maxQuantity           = 5
	maxEngagement         = 10
)

type Options struct {
	Rows int
	Seed uint64
	// MaxAttempts caps draws including rejected duplicates. Zero derives a
	// cap from Rows.
	MaxAttempts int
}

func (o Options) attemptLimit() int {
	if o.MaxAttempts > 0 {
		return o.MaxAttempts
	}
	return 20*o.Rows + 1000
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate draws opts.Rows records whose uniqueness keys are all distinct.
func Generate(cat *catalog.Catalog, opts Options) ([]models.Record, error) {
	if opts.Rows <= 0 {
		return nil, errors.Errorf("rows must be positive, got %d", opts.Rows)
	}
	if space := cat.KeySpace(); uint64(opts.Rows) > space {
		return nil, errors.Wrapf(ErrKeySpaceExhausted, "%d rows requested, only %d unique keys exist", opts.Rows, space)
	}

	days := cat.Days()
	rng := newRand(opts.Seed)
	seen := make(map[models.Key]struct{}, opts.Rows)
	records := make([]models.Record, 0, opts.Rows)
	limit := opts.attemptLimit()

	for attempt := 0; len(records) < opts.Rows; attempt++ {
		if attempt >= limit {
			return nil, errors.Wrapf(ErrKeySpaceExhausted, "generated %d of %d rows after %d attempts", len(records), opts.Rows, attempt)
		}

		rec := draw(rng, cat, days)
		key := rec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}

	return records, nil
}

func draw(rng *rand.Rand, cat *catalog.Catalog, days []time.Time) models.Record {
	date := pick(rng, days)
	country := pick(rng, cat.Countries)
	jobTitle := pick(rng, cat.JobTitles)
	product := pick(rng, cat.Products)
	salesperson := pick(rng, cat.Salespeople)
	channel := pick(rng, cat.Channels)
	unitPrice := roundCents(minUnitPrice + rng.Float64()*(maxUnitPrice-minUnitPrice))
	quantity := 1 + rng.IntN(maxQuantity)

	daysSinceStart := int(date.Sub(cat.Start).Hours() / 24)
	growth := 1 + dailyGrowth*float64(daysSinceStart)

	var sales float64
	if rng.Float64() < conversionProbability {
		sales = unitPrice * float64(quantity) * growth
	}

	engagement := 1 + rng.IntN(maxEngagement)
	promo := pick(rng, cat.PromoEvents)
	target := baseTarget * (1 + monthlyTargetStep*float64(daysSinceStart/30))

	return models.Record{
		Date:             date,
		Country:          country,
		Region:           cat.RegionFor(country),
		Product:          product,
		JobTitle:         jobTitle,
		Sales:            sales,
		UserEngagement:   engagement,
		PromoEvent:       promo,
		Converted:        sales > 0,
		Salesperson:      salesperson,
		MarketingChannel: channel,
		SalesTarget:      target,
		UnitPrice:        unitPrice,
	}
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
