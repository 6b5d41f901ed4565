package dataset

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/models"
)

const (
	minCostRatio       = 0.5
	maxCostRatio       = 0.7
	minSessionDuration = 30.0
	maxSessionDuration = 300.0
)

// Augment fills the derived columns of every record in place. The auxiliary
// fields are sampled independently of the generated ones.
func Augment(cat *catalog.Catalog, records []models.Record, seed uint64) []models.Record {
	rng := newRand(seed + 1)

	for i := range records {
		r := &records[i]

		r.Cost = r.Sales * (minCostRatio + rng.Float64()*(maxCostRatio-minCostRatio))
		r.ProfitMargin = profitMargin(r.Sales, r.Cost)
		r.AgeGroup = pick(rng, cat.AgeGroups)
		r.SessionDuration = minSessionDuration + rng.Float64()*(maxSessionDuration-minSessionDuration)
		r.JobStatus = pick(rng, cat.JobStatuses)
		r.JobPriority = pick(rng, cat.JobPriorities)
		r.LogType = pick(rng, cat.LogTypes)
		r.Month = r.Date.Format("2006-01")
		r.Quantity = soldQuantity(r.Sales, r.UnitPrice)
		r.Details = r.JobTitle + " - " + r.LogType + " - " + r.Salesperson
	}

	return records
}

func profitMargin(sales, cost float64) float64 {
	if sales == 0 {
		return 0
	}
	return decimal.NewFromFloat((sales - cost) / sales * 100).Round(2).InexactFloat64()
}

// soldQuantity backs the unit count out of the sale amount. Rows that did not
// convert still count as one unit.
func soldQuantity(sales, unitPrice float64) int {
	q := 0.0
	if sales > 0 && unitPrice > 0 {
		q = math.RoundToEven(sales / unitPrice)
	}
	return int(min(max(q, 1), maxQuantity))
}

// Build generates the dataset, persists it to path, reads it back and fills
// the derived columns.
func Build(ctx context.Context, cat *catalog.Catalog, opts Options, path string) ([]models.Record, error) {
	generated, err := Generate(cat, opts)
	if err != nil {
		return nil, errors.Wrap(err, "generate dataset")
	}

	if err := WriteCSV(path, generated); err != nil {
		return nil, errors.Wrap(err, "persist dataset")
	}

	loaded, err := LoadCSV(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "reload dataset")
	}

	return Augment(cat, loaded, opts.Seed), nil
}
