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

// Comparison tolerances. Values match when
// |a-b| <= tolAbs + tolRel*max(|a|,|b|).
const (
	tolRel = 1e-4
	tolAbs = 1e-4
)

// Mismatch is one failed check of a comparison.
type Mismatch struct {
	// Stat is the statistic row, empty for file and header problems.
	Stat string `json:"stat,omitempty"`

	// Column is the percentile column, empty for whole-row problems.
	Column string `json:"column,omitempty"`

	Want float64 `json:"-"`
	Got  float64 `json:"-"`

	Message string `json:"message"`
}

// MarshalJSON renders Want and Got as text so NaN survives encoding.
func (m Mismatch) MarshalJSON() ([]byte, error) {
	type plain Mismatch
	out := struct {
		plain
		Want string `json:"want,omitempty"`
		Got  string `json:"got,omitempty"`
	}{plain: plain(m)}
	if m.Column != "" {
		out.Want = formatValue(m.Want)
		out.Got = formatValue(m.Got)
	}
	return json.Marshal(out)
}

// String formats the mismatch for logs and test output.
func (m Mismatch) String() string {
	if m.Column != "" {
		return fmt.Sprintf("%s/%s: %s (want %s, got %s)",
			m.Stat, m.Column, m.Message, formatValue(m.Want), formatValue(m.Got))
	}
	if m.Stat != "" {
		return fmt.Sprintf("%s: %s", m.Stat, m.Message)
	}
	return m.Message
}

// Report collects the mismatches of one comparison.
type Report struct {
	Source     string     `json:"source"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether the comparison found no mismatches.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

func (r *Report) add(m Mismatch) {
	r.Mismatches = append(r.Mismatches, m)
}

// String lists every mismatch, one per line.
func (r *Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%s: ok", r.Source)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d mismatches\n", r.Source, len(r.Mismatches))
	for _, m := range r.Mismatches {
		fmt.Fprintf(&sb, "  %s\n", m)
	}
	return sb.String()
}

// approxEqual applies the combined tolerance. NaN matches only NaN.
func approxEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tolAbs+tolRel*math.Max(math.Abs(a), math.Abs(b))
}

// CompareFile compares t against the percentile file at path. An unreadable
// file is reported as a single mismatch.
func (t *Table) CompareFile(path string) *Report {
	f, err := os.Open(path)
	if err != nil {
		return &Report{Source: path, Mismatches: []Mismatch{{
			Message: fmt.Sprintf("cannot open golden file: %v", err),
		}}}
	}
	defer f.Close()
	rep := t.Compare(f)
	rep.Source = path
	return rep
}

// Compare reads a percentile file from r and checks it against t. Every
// check runs even after earlier ones fail.
func (t *Table) Compare(r io.Reader) *Report {
	rep := &Report{Source: "<reader>"}
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		msg := "missing header"
		if err := sc.Err(); err != nil {
			msg = fmt.Sprintf("read header: %v", err)
		}
		rep.add(Mismatch{Message: msg})
		return rep
	}
	want := strings.Fields(Header)
	got := strings.Fields(sc.Text())
	for i, name := range want {
		if i >= len(got) || got[i] != name {
			rep.add(Mismatch{Message: fmt.Sprintf("header field %d: want %q, got %q", i, name, field(got, i))})
		}
	}
	for i := len(want); i < len(got); i++ {
		rep.add(Mismatch{Message: fmt.Sprintf("header field %d: unexpected %q", i, got[i])})
	}

	for _, row := range t.Rows {
		if !sc.Scan() {
			rep.add(Mismatch{Stat: row.Stat, Message: "missing row"})
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) != numColumns+1 {
			rep.add(Mismatch{Stat: row.Stat, Message: fmt.Sprintf("want %d fields, got %d", numColumns+1, len(fields))})
			continue
		}
		if fields[0] != row.Stat {
			rep.add(Mismatch{Stat: row.Stat, Message: fmt.Sprintf("row name %q", fields[0])})
		}
		for c, v := range row.Values {
			stored, err := strconv.ParseFloat(fields[c+1], 64)
			if err != nil {
				rep.add(Mismatch{Stat: row.Stat, Column: Columns[c], Got: v, Want: math.NaN(),
					Message: fmt.Sprintf("unparseable value %q", fields[c+1])})
				continue
			}
			if !approxEqual(stored, v) {
				rep.add(Mismatch{Stat: row.Stat, Column: Columns[c], Want: stored, Got: v, Message: "outside tolerance"})
			}
		}
	}
	if err := sc.Err(); err != nil {
		rep.add(Mismatch{Message: fmt.Sprintf("read: %v", err)})
	}
	return rep
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
