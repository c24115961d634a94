package pipeline

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"go-worldstats/internal/countries"
	"go-worldstats/internal/model"
	"go-worldstats/pkg/utils"
)

// ReshapeWideToLong turns every numeric cell of a wide table into one LongValue.
// Rows are spread over a bounded pool of workers; the merged output is sorted by
// (country_id, year, line) so it does not depend on scheduling.
func ReshapeWideToLong(ctx context.Context, table *model.RawWideTable, resolver *countries.Resolver, workerCount int) ([]model.LongValue, *model.DropCounts, error) {
	if table == nil {
		return nil, nil, fmt.Errorf("reshape: nil table")
	}
	if workerCount <= 0 {
		workerCount = 2 // default
	}

	drops := model.NewDropCounts()
	perRow := make([][]model.LongValue, len(table.Rows))
	rows := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(rows)
		for i := range table.Rows {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rows <- i:
			}
		}
		return nil
	})

	for w := 0; w < workerCount; w++ {
		g.Go(func() error {
			for i := range rows {
				if err := ctx.Err(); err != nil {
					return err
				}
				// each worker owns distinct indexes of perRow
				perRow[i] = reshapeRow(table, &table.Rows[i], resolver, drops)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	total := 0
	for _, vals := range perRow {
		total += len(vals)
	}
	out := make([]model.LongValue, 0, total)
	for _, vals := range perRow {
		out = append(out, vals...)
	}
	SortLong(out)
	return out, drops, nil
}

func reshapeRow(table *model.RawWideTable, row *model.RawWideRow, resolver *countries.Resolver, drops *model.DropCounts) []model.LongValue {
	id, ok := resolver.Resolve(row.Name, row.Code)
	if !ok {
		name := row.Name
		if name == "" {
			name = row.Code
		}
		drops.Record(&model.RowDataError{Source: table.Source, Line: row.Line, Country: name, Reason: model.DropUnmappedCountry})
		return nil
	}

	vals := make([]model.LongValue, 0, len(row.Cells))
	for j, cell := range row.Cells {
		if j >= len(table.Years) {
			break
		}
		year := table.Years[j]
		v, kind := utils.ParseCell(cell)
		switch kind {
		case utils.CellMissing:
			// pivoted tables already counted their missing values; empty cells there are just absent
			if table.Layout != model.LayoutLong {
				drops.Record(&model.RowDataError{Source: table.Source, Line: row.Line, Country: id, Year: year, Reason: model.DropMissingValue, Value: cell})
			}
		case utils.CellNonNumeric:
			drops.Record(&model.RowDataError{Source: table.Source, Line: row.Line, Country: id, Year: year, Reason: model.DropNonNumeric, Value: cell})
		default:
			vals = append(vals, model.LongValue{CountryID: id, Year: year, Value: v, Line: row.Line})
		}
	}
	return vals
}

// SortLong orders values by country, year and source line
func SortLong(vals []model.LongValue) {
	sort.SliceStable(vals, func(i, j int) bool {
		a, b := vals[i], vals[j]
		if a.CountryID != b.CountryID {
			return a.CountryID < b.CountryID
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Line < b.Line
	})
}
