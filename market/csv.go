package market

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// column aliases accepted in a CSV header
var columnAliases = map[string]string{
	"ts": "time", "time": "time", "timestamp": "time", "date": "time",
	"o": "open", "open": "open",
	"h": "high", "high": "high",
	"l": "low", "low": "low",
	"c": "close", "close": "close",
	"v": "volume", "volume": "volume", "vol": "volume",
}

var defaultColumns = []string{"time", "open", "high", "low", "close", "volume"}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadCSV reads an OHLCV file. See ReadCSV for the accepted format.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open bars")
	}
	defer f.Close()

	s, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return s, nil
}

// ReadCSV parses OHLCV rows:
//
//	ts,o,h,l,c,v
//
// A header row is optional; when present its names (ts|time|timestamp,
// o|open, h|high, l|low, c|close, v|volume) select the columns in any order.
// Times are RFC3339, "2006-01-02 15:04:05" style, or unix milliseconds.
// Empty rows are skipped. The result is sorted by time and validated, so a
// duplicate timestamp is reported as a DataError.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		cols   map[string]int
		out    Series
		sawRow bool
		line   int
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "csv")
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		if !sawRow {
			sawRow = true
			if h, ok := parseHeader(row); ok {
				cols = h
				continue
			}
		}
		if cols == nil {
			cols = positional()
		}

		b, err := parseBarRow(row, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, b)
	}

	out = out.Sorted()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func positional() map[string]int {
	cols := make(map[string]int, len(defaultColumns))
	for i, name := range defaultColumns {
		cols[name] = i
	}
	return cols
}

func parseHeader(row []string) (map[string]int, bool) {
	cols := make(map[string]int)
	for i, raw := range row {
		name, ok := columnAliases[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols["time"]; !ok {
		return nil, false
	}
	if _, ok := cols["close"]; !ok {
		return nil, false
	}
	return cols, true
}

func parseBarRow(row []string, cols map[string]int) (Bar, error) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	ts, ok := field("time")
	if !ok || ts == "" {
		return Bar{}, errors.New("missing time")
	}
	t, err := ParseTime(ts)
	if err != nil {
		return Bar{}, err
	}

	b := Bar{Time: t}
	targets := []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"close", &b.Close, true},
		{"open", &b.Open, false},
		{"high", &b.High, false},
		{"low", &b.Low, false},
		{"volume", &b.Volume, false},
	}
	for _, tg := range targets {
		s, ok := field(tg.name)
		if !ok || s == "" {
			if tg.required {
				return Bar{}, errors.Errorf("missing %s", tg.name)
			}
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, errors.Wrapf(err, "bad %s %q", tg.name, s)
		}
		*tg.dst = v
	}

	// A close-only file still yields a usable bar.
	if _, ok := cols["open"]; !ok {
		b.Open, b.High, b.Low = b.Close, b.Close, b.Close
	}
	return b, nil
}

// ParseTime accepts the layouts listed on ReadCSV. Bare integers are unix
// milliseconds, the unit exchanges use for kline open times.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("bad time %q", s)
}
