package facttable

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"go-worldstats/internal/model"
)

// createdBy is stamped into every file; it must not vary between runs
const createdBy = "worldstats"

// Schema is the per-file schema. The year lives in the partition directory.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "country_id", Type: arrow.BinaryTypes.String},
	{Name: "population", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "gdp", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

// ParseCompression maps a codec name to a parquet codec
func ParseCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	}
	return compress.Codecs.Uncompressed, fmt.Errorf("unknown compression %q", name)
}

// encodePartition serializes the records of one file. Records must already be
// sorted by country_id; equal inputs give byte-identical output.
func encodePartition(records []model.CountryYearRecord, codec compress.Compression, pool memory.Allocator) ([]byte, error) {
	countryBuilder := array.NewStringBuilder(pool)
	defer countryBuilder.Release()
	popBuilder := array.NewInt64Builder(pool)
	defer popBuilder.Release()
	gdpBuilder := array.NewFloat64Builder(pool)
	defer gdpBuilder.Release()

	for _, r := range records {
		countryBuilder.Append(r.CountryID)
		if r.Population != nil {
			popBuilder.Append(*r.Population)
		} else {
			popBuilder.AppendNull()
		}
		if r.GDP != nil {
			gdpBuilder.Append(*r.GDP)
		} else {
			gdpBuilder.AppendNull()
		}
	}

	countryArr := countryBuilder.NewArray()
	defer countryArr.Release()
	popArr := popBuilder.NewArray()
	defer popArr.Release()
	gdpArr := gdpBuilder.NewArray()
	defer gdpArr.Release()

	record := array.NewRecord(Schema, []arrow.Array{countryArr, popArr, gdpArr}, int64(len(records)))
	defer record.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(false),
		parquet.WithCreatedBy(createdBy),
		parquet.WithAllocator(pool),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(pool),
	)

	var buf bytes.Buffer
	writer, err := pqarrow.NewFileWriter(Schema, &buf, props, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// readPartition decodes one file back into records of the given year
func readPartition(ctx context.Context, path string, year int, pool memory.Allocator) ([]model.CountryYearRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(pool), pqarrow.ArrowReadProperties{}, pool)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer table.Release()

	idx := func(name string) (int, error) {
		found := table.Schema().FieldIndices(name)
		if len(found) == 0 {
			return 0, fmt.Errorf("%s: missing column %q", path, name)
		}
		return found[0], nil
	}
	countryIdx, err := idx("country_id")
	if err != nil {
		return nil, err
	}
	popIdx, err := idx("population")
	if err != nil {
		return nil, err
	}
	gdpIdx, err := idx("gdp")
	if err != nil {
		return nil, err
	}

	out := make([]model.CountryYearRecord, 0, table.NumRows())
	tr := array.NewTableReader(table, 4096)
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		countries, ok := rec.Column(countryIdx).(*array.String)
		if !ok {
			return nil, fmt.Errorf("%s: country_id has type %s", path, rec.Column(countryIdx).DataType())
		}
		pops, ok := rec.Column(popIdx).(*array.Int64)
		if !ok {
			return nil, fmt.Errorf("%s: population has type %s", path, rec.Column(popIdx).DataType())
		}
		gdps, ok := rec.Column(gdpIdx).(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("%s: gdp has type %s", path, rec.Column(gdpIdx).DataType())
		}
		for i := 0; i < int(rec.NumRows()); i++ {
			r := model.CountryYearRecord{CountryID: countries.Value(i), Year: year}
			if pops.IsValid(i) {
				r.Population = model.Int64Ptr(pops.Value(i))
			}
			if gdps.IsValid(i) {
				r.GDP = model.Float64Ptr(gdps.Value(i))
			}
			out = append(out, r)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}
