package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	dateLayout = "2006-01-02"
	batchSize  = 10000
	maxWorkers = 10
)

var columns = []string{
	"date", "country", "region", "product", "job_title", "sales", "user_engagement",
	"promo_event", "converted", "salesperson", "marketing_channel", "sales_target", "unit_price",
}

// WriteCSV persists the generated columns of records with a header row.
func WriteCSV(path string, records []models.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	buf := bufio.NewWriterSize(file, 1<<20)
	w := csv.NewWriter(buf)

	if err := w.Write(columns); err != nil {
		return errors.Wrap(err, "write header")
	}

	row := make([]string, len(columns))
	for _, r := range records {
		row[0] = r.Date.Format(dateLayout)
		row[1] = r.Country
		row[2] = r.Region
		row[3] = r.Product
		row[4] = r.JobTitle
		row[5] = formatFloat(r.Sales)
		row[6] = strconv.Itoa(r.UserEngagement)
		row[7] = r.PromoEvent
		row[8] = formatBool(r.Converted)
		row[9] = r.Salesperson
		row[10] = r.MarketingChannel
		row[11] = formatFloat(r.SalesTarget)
		row[12] = formatFloat(r.UnitPrice)
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	if err := buf.Flush(); err != nil {
		return errors.Wrap(err, "flush buffer")
	}
	return file.Close()
}

// LoadCSV reads a file written by WriteCSV. Any malformed row fails the whole
// load; a partially loaded dataset is never returned.
func LoadCSV(ctx context.Context, path string) ([]models.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1<<20))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !slices.Equal(header, columns) {
		return nil, errors.Errorf("unexpected header %v", header)
	}
	reader.FieldsPerRecord = len(columns)

	var records []models.Record
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		parsed, err := parseBatch(ctx, batch, len(records))
		if err != nil {
			return err
		}
		records = append(records, parsed...)
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		return nil, errors.New("no records found")
	}

	return records, nil
}

func parseBatch(ctx context.Context, rows [][]string, processed int) ([]models.Record, error) {
	out := make([]models.Record, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	chunk := (len(rows) + maxWorkers - 1) / maxWorkers
	for lo := 0; lo < len(rows); lo += chunk {
		hi := min(lo+chunk, len(rows))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := parseRecord(rows[i])
				if err != nil {
					// +2: one for the header, one for 1-based lines
					return errors.Wrapf(err, "line %d", processed+i+2)
				}
				out[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRecord(row []string) (models.Record, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return models.Record{}, errors.Wrap(err, "date")
	}

	sales, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
	if err != nil {
		return models.Record{}, errors.Wrap(err, "sales")
	}

	engagement, err := strconv.Atoi(strings.TrimSpace(row[6]))
	if err != nil {
		return models.Record{}, errors.Wrap(err, "user_engagement")
	}

	converted, err := strconv.ParseBool(strings.TrimSpace(row[8]))
	if err != nil {
		return models.Record{}, errors.Wrap(err, "converted")
	}

	target, err := strconv.ParseFloat(strings.TrimSpace(row[11]), 64)
	if err != nil {
		return models.Record{}, errors.Wrap(err, "sales_target")
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(row[12]), 64)
	if err != nil {
		return models.Record{}, errors.Wrap(err, "unit_price")
	}

	return models.Record{
		Date:             date,
		Country:          row[1],
		Region:           row[2],
		Product:          row[3],
		JobTitle:         row[4],
		Sales:            sales,
		UserEngagement:   engagement,
		PromoEvent:       row[7],
		Converted:        converted,
		Salesperson:      row[9],
		MarketingChannel: row[10],
		SalesTarget:      target,
		UnitPrice:        unitPrice,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
