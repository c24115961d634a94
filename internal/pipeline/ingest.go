package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go-worldstats/internal/model"
	"go-worldstats/pkg/utils"
)

// ------------------- Loading -------------------

const bom = "\uFEFF"

// LoadWideTable reads one raw metric file. Wide files (one column per year) are
// returned as they are; long files (Country Name, Country Code, Year, Value) are
// pivoted into the same shape. Rows that cannot be read are counted, not fatal.
func LoadWideTable(ctx context.Context, path string, metric model.Metric) (*model.RawWideTable, *model.DropCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &model.StructuralError{Source: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()
	return ReadWideTable(ctx, f, path, metric)
}

// ReadWideTable is LoadWideTable over an arbitrary reader
func ReadWideTable(ctx context.Context, r io.Reader, source string, metric model.Metric) (*model.RawWideTable, *model.DropCounts, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &model.StructuralError{Source: source, Reason: "file is empty"}
	}
	if err != nil {
		return nil, nil, &model.StructuralError{Source: source, Reason: "cannot read header", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], bom))
	}

	drops := model.NewDropCounts()
	if layout := detectLayout(header, metric); layout != nil {
		var table *model.RawWideTable
		switch layout.kind {
		case model.LayoutWide:
			table, err = readWide(ctx, csvReader, source, metric, layout, drops)
		default:
			table, err = readLong(ctx, csvReader, source, metric, layout, drops)
		}
		if err != nil {
			return nil, nil, err
		}
		return table, drops, nil
	}
	return nil, nil, &model.StructuralError{
		Source: source,
		Reason: fmt.Sprintf("no year columns and no Country/Year/Value columns in header %q", header),
	}
}

// layoutSpec records where the interesting columns of a header are
type layoutSpec struct {
	kind     string
	nameCol  int
	codeCol  int
	yearCols []int // wide: header index per year
	years    []int
	yearCol  int // long
	valueCol int // long
}

func detectLayout(header []string, metric model.Metric) *layoutSpec {
	named := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(h)
		if _, dup := named[key]; !dup {
			named[key] = i
		}
	}
	lookup := func(keys ...string) int {
		for _, k := range keys {
			if i, ok := named[k]; ok {
				return i
			}
		}
		return -1
	}

	spec := &layoutSpec{
		nameCol: lookup("country name", "country", "name"),
		codeCol: lookup("country code", "code", "iso3"),
	}

	var leading []int
	for i, h := range header {
		if y, ok := utils.ParseYear(h); ok {
			spec.yearCols = append(spec.yearCols, i)
			spec.years = append(spec.years, y)
			continue
		}
		leading = append(leading, i)
	}

	if len(spec.yearCols) > 0 {
		spec.kind = model.LayoutWide
		if spec.nameCol < 0 && len(leading) > 0 {
			spec.nameCol = leading[0]
		}
		if spec.codeCol < 0 && len(leading) > 1 && leading[1] != spec.nameCol {
			spec.codeCol = leading[1]
		}
		if spec.nameCol < 0 {
			return nil
		}
		return spec
	}

	spec.kind = model.LayoutLong
	spec.yearCol = lookup("year", "date")
	spec.valueCol = lookup("value", string(metric))
	if spec.yearCol < 0 || spec.valueCol < 0 || (spec.nameCol < 0 && spec.codeCol < 0) {
		return nil
	}
	return spec
}

func readWide(ctx context.Context, r *csv.Reader, source string, metric model.Metric, layout *layoutSpec, drops *model.DropCounts) (*model.RawWideTable, error) {
	table := &model.RawWideTable{
		Source: source,
		Metric: metric,
		Layout: model.LayoutWide,
		Years:  layout.years,
	}

	err := eachRecord(ctx, r, source, drops, func(line int, rec []string) {
		if len(rec) <= layout.nameCol {
			drops.Record(&model.RowDataError{Source: source, Line: line, Reason: model.DropMalformedRow})
			return
		}
		row := model.RawWideRow{
			Line:  line,
			Name:  strings.TrimSpace(rec[layout.nameCol]),
			Cells: make([]string, len(layout.yearCols)),
		}
		if layout.codeCol >= 0 && layout.codeCol < len(rec) {
			row.Code = strings.TrimSpace(rec[layout.codeCol])
		}
		// short rows are padded with empty cells, which reshape counts as missing
		for j, col := range layout.yearCols {
			if col < len(rec) {
				row.Cells[j] = rec[col]
			}
		}
		table.Rows = append(table.Rows, row)
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func readLong(ctx context.Context, r *csv.Reader, source string, metric model.Metric, layout *layoutSpec, drops *model.DropCounts) (*model.RawWideTable, error) {
	type pivotRow struct {
		row   model.RawWideRow
		cells map[int]string
	}
	var (
		order   []*pivotRow
		byKey   = make(map[string]*pivotRow)
		yearSet = make(map[int]bool)
	)

	field := func(rec []string, col int) string {
		if col < 0 || col >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[col])
	}

	err := eachRecord(ctx, r, source, drops, func(line int, rec []string) {
		name, code := field(rec, layout.nameCol), field(rec, layout.codeCol)
		year, ok := utils.ParseYear(field(rec, layout.yearCol))
		if !ok || (name == "" && code == "") {
			drops.Record(&model.RowDataError{Source: source, Line: line, Country: name, Reason: model.DropMalformedRow})
			return
		}

		key := name + "\x00" + code
		p, seen := byKey[key]
		if !seen {
			p = &pivotRow{row: model.RawWideRow{Line: line, Name: name, Code: code}, cells: make(map[int]string)}
			byKey[key] = p
			order = append(order, p)
		}
		if _, dup := p.cells[year]; dup {
			drops.Record(&model.RowDataError{Source: source, Line: line, Country: name, Year: year, Reason: model.DropDuplicateKey})
			return
		}

		raw := field(rec, layout.valueCol)
		if _, kind := utils.ParseCell(raw); kind == utils.CellMissing {
			drops.Record(&model.RowDataError{Source: source, Line: line, Country: name, Year: year, Reason: model.DropMissingValue, Value: raw})
			// the key is still taken so a later duplicate is not mistaken for the first value
			p.cells[year] = ""
			return
		}
		p.cells[year] = raw
		yearSet[year] = true
	})
	if err != nil {
		return nil, err
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	table := &model.RawWideTable{
		Source: source,
		Metric: metric,
		Layout: model.LayoutLong,
		Years:  years,
		Rows:   make([]model.RawWideRow, 0, len(order)),
	}
	for _, p := range order {
		p.row.Cells = make([]string, len(years))
		for j, y := range years {
			p.row.Cells[j] = p.cells[y]
		}
		table.Rows = append(table.Rows, p.row)
	}
	return table, nil
}

// eachRecord feeds every data record to fn with its 1-based line number.
// Records the csv package rejects are counted as malformed and skipped.
func eachRecord(ctx context.Context, r *csv.Reader, source string, drops *model.DropCounts, fn func(line int, rec []string)) error {
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				drops.Record(&model.RowDataError{Source: source, Line: parseErr.Line, Reason: model.DropMalformedRow})
				continue
			}
			return &model.StructuralError{Source: source, Reason: "read failed", Err: err}
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		line, _ := r.FieldPos(0)
		fn(line, rec)
	}
}
