package services

import (
	"math"
	"slices"

	"sales-dashboard/internal/models"
)

const whiskerIQR = 1.5

// boxStats summarises values the way a box plot draws them: quartiles by
// linear interpolation, whiskers at the furthest points within 1.5 IQR of
// the box and everything beyond them as outliers.
func boxStats(event string, values []float64) models.PromoDistribution {
	d := models.PromoDistribution{
		PromoEvent: event,
		Count:      len(values),
		Outliers:   []float64{},
	}
	if len(values) == 0 {
		return d
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.Q1 = quantile(sorted, 0.25)
	d.Median = quantile(sorted, 0.5)
	d.Q3 = quantile(sorted, 0.75)

	iqr := d.Q3 - d.Q1
	lowFence := d.Q1 - whiskerIQR*iqr
	highFence := d.Q3 + whiskerIQR*iqr

	d.LowerWhisker, d.UpperWhisker = d.Q1, d.Q3
	lowerSet := false
	for _, v := range sorted {
		switch {
		case v < lowFence || v > highFence:
			d.Outliers = append(d.Outliers, v)
		case !lowerSet:
			d.LowerWhisker = v
			lowerSet = true
			d.UpperWhisker = v
		default:
			d.UpperWhisker = v
		}
	}

	return d
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
