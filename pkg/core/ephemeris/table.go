package ephemeris

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// Table serves longitudes interpolated from tabulated samples.
//
// The CSV layout is a header row naming the columns, then one row per
// sample:
//
//	time,Su,Mo,Ma,Me,Ju,Ve,Sa
//	2024-01-01T00:00:00Z,280.1,195.3,...
//
// Columns may appear in any order and bodies may be omitted. Times must be
// RFC 3339 and strictly increasing. Interpolation follows the shorter arc
// between neighbouring samples, so rows must be close enough that no body
// moves more than 180° between them.
type Table struct {
	times  []time.Time
	bodies []graha.Body
	rows   [][]float64 // rows[i][j] is bodies[j] at times[i]
}

// LoadTable reads a CSV table from path.
func LoadTable(path string) (*Table, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open ephemeris table")
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable parses a CSV table from r.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read table header")
	}
	if len(header) < 2 || !strings.EqualFold(header[0], "time") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table header must start with \"time\"")
	}

	tbl := &Table{}
	for _, col := range header[1:] {
		b, err := graha.Parse(col)
		if err != nil {
			return nil, err
		}
		if b == graha.Rahu || b == graha.Ketu {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table column %q: lunar nodes are computed, not tabulated", col)
		}
		tbl.bodies = append(tbl.bodies, b)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "table line %d", line)
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDate, err, "table line %d", line)
		}
		if n := len(tbl.times); n > 0 && !ts.After(tbl.times[n-1]) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table line %d: times must be strictly increasing", line)
		}
		row := make([]float64, len(tbl.bodies))
		for j := range tbl.bodies {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidLongitude, err, "table line %d column %s", line, header[j+1])
			}
			if err := errors.ValidateEclipticLongitude(v); err != nil {
				return nil, err
			}
			row[j] = sidereal.Normalize(v)
		}
		tbl.times = append(tbl.times, ts)
		tbl.rows = append(tbl.rows, row)
	}

	if len(tbl.times) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table needs at least two rows, got %d", len(tbl.times))
	}
	return tbl, nil
}

// Name implements Provider.
func (*Table) Name() string { return string(KindTable) }

// Span returns the first and last tabulated instants.
func (tbl *Table) Span() (time.Time, time.Time) {
	return tbl.times[0], tbl.times[len(tbl.times)-1]
}

// TropicalLongitudes implements Provider. Instants outside the table span
// return an INVALID_DATE error.
func (tbl *Table) TropicalLongitudes(t time.Time) (map[graha.Body]float64, error) {
	first, last := tbl.Span()
	if t.Before(first) || t.After(last) {
		return nil, errors.New(errors.ErrCodeInvalidDate, "%s outside table span %s..%s",
			t.UTC().Format(time.RFC3339), first.Format(time.RFC3339), last.Format(time.RFC3339))
	}

	// First index with times[i] >= t.
	i := sort.Search(len(tbl.times), func(i int) bool { return !tbl.times[i].Before(t) })
	out := make(map[graha.Body]float64, len(tbl.bodies))
	if tbl.times[i].Equal(t) {
		for j, b := range tbl.bodies {
			out[b] = tbl.rows[i][j]
		}
		return out, nil
	}

	t0, t1 := tbl.times[i-1], tbl.times[i]
	f := float64(t.Sub(t0)) / float64(t1.Sub(t0))
	for j, b := range tbl.bodies {
		a, c := tbl.rows[i-1][j], tbl.rows[i][j]
		delta := sidereal.Normalize(c-a+180) - 180
		out[b] = sidereal.Normalize(a + f*delta)
	}
	return out, nil
}
