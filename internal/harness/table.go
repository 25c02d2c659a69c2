package harness

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const numColumns = 5

// Columns are the percentile column names in file order.
var Columns = [numColumns]string{"c5", "q1", "med", "q3", "c95"}

// Header is the first line of a percentile file.
var Header = "stat\t" + strings.Join(Columns[:], "\t")

// significantDigits is the precision of written values.
const significantDigits = 5

// Row is one statistic's percentiles.
type Row struct {
	Stat   string
	Values [numColumns]float64
}

// MarshalJSON encodes the row as {"stat": ..., "c5": ..., ...} with
// non-finite values as null.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, numColumns+1)
	out["stat"] = r.Stat
	for c, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[Columns[c]] = nil
			continue
		}
		out[Columns[c]] = v
	}
	return json.Marshal(out)
}

// Table is a percentile table in canonical statistic order.
type Table struct {
	// Runs is the number of runs the table was extracted from. It is not
	// part of the file format.
	Runs int   `json:"runs"`
	Rows []Row `json:"rows"`
}

// Row returns the row of one statistic.
func (t *Table) Row(s Stat) Row {
	return t.Rows[s]
}

// formatValue renders v to five significant digits. Non-finite values use
// the spellings "nan", "inf" and "-inf".
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', significantDigits, 64)
}

// Write emits the tab-separated percentile table.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		fields := make([]string, 0, numColumns+1)
		fields = append(fields, row.Stat)
		for _, v := range row.Values {
			fields = append(fields, formatValue(v))
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the table to path, replacing any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Bytes returns the table in file format.
func (t *Table) Bytes() []byte {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = t.Write(&sb)
	return []byte(sb.String())
}

// String renders the table for humans, one labelled line per statistic.
func (t *Table) String() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "Stat %s", row.Stat)
		for c, v := range row.Values {
			fmt.Fprintf(&sb, "\t%s: %s", Columns[c], formatValue(v))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
