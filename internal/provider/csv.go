package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/marwyn/tradewind/internal/core"
)

// Dir serves bars from CSV files laid out as <root>/<SYMBOL>.csv.
type Dir struct {
	root string
}

var _ BarProvider = (*Dir)(nil)

// NewDir creates a provider rooted at the given directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Bars loads the series for the symbol and returns its newest count
// bars.
func (d *Dir) Bars(ctx context.Context, symbol string, count int) (core.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	series, err := LoadSeries(filepath.Join(d.root, symbol+".csv"))
	if err != nil {
		return nil, err
	}
	if count > 0 && len(series) > count {
		series = series[len(series)-count:]
	}
	return series, nil
}

// LoadSeries reads a bar series from a CSV file.
func LoadSeries(path string) (core.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	defer f.Close()
	series, err := ReadSeries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// ReadSeries parses bars from CSV records shaped as
// time,open,high,low,close[,volume]. The time column accepts RFC 3339
// or Unix seconds; a header row is skipped when detected. The parsed
// series must pass validation, so rows have to be in ascending time
// order.
func ReadSeries(r io.Reader) (core.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var series core.PriceSeries
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidSeries, err)
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) < 5 {
			return nil, core.WrapErrorf(core.ErrInvalidSeries, "line %d: expected at least 5 columns, got %d", line, len(record))
		}

		bar, err := parseBar(record)
		if err != nil {
			return nil, core.WrapErrorf(core.ErrInvalidSeries, "line %d: %v", line, err)
		}
		series = append(series, bar)
	}

	if len(series) == 0 {
		return nil, core.WrapErrorf(core.ErrNoData, "no bars in input")
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func parseBar(record []string) (core.PriceBar, error) {
	ts, err := parseTime(strings.TrimSpace(record[0]))
	if err != nil {
		return core.PriceBar{}, err
	}

	fields := make([]float64, 0, 5)
	for _, raw := range record[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return core.PriceBar{}, err
		}
		fields = append(fields, v)
	}

	bar := core.PriceBar{
		Time:  ts,
		Open:  fields[0],
		High:  fields[1],
		Low:   fields[2],
		Close: fields[3],
	}
	if len(fields) > 4 {
		bar.Volume = fields[4]
	}
	return bar, nil
}

func parseTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[len(record)-1]), 64)
	return err != nil
}
