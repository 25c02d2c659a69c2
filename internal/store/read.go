package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/molsim/internal/harness"
)

// ErrNotFound is returned when no capture matches a lookup.
var ErrNotFound = errors.New("capture not found")

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const captureColumns = `id, seq, name, mode, replication_gamma, seed, runs, params`

func scanCapture(row scanner) (Capture, error) {
	var (
		c          Capture
		seed       int64
		paramsJSON string
	)
	if err := row.Scan(&c.ID, &c.Seq, &c.Name, &c.Mode, &c.ReplicationGamma, &seed, &c.Runs, &paramsJSON); err != nil {
		return Capture{}, err
	}
	c.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(paramsJSON), &c.Params); err != nil {
		return Capture{}, fmt.Errorf("unmarshal params of %s: %w", c.ID, err)
	}
	return c, nil
}

// ReadCaptures returns every archived capture in seq order.
//
// Returns an empty slice (not nil) if the archive is empty.
func (s *Store) ReadCaptures(ctx context.Context) ([]Capture, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+captureColumns+`
		FROM captures
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	captures := []Capture{}
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate captures: %w", err)
	}
	return captures, nil
}

// ReadCapture returns the capture with the given ID.
func (s *Store) ReadCapture(ctx context.Context, id string) (Capture, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+captureColumns+` FROM captures WHERE id = ?`, id)
	c, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Capture{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	if err != nil {
		return Capture{}, fmt.Errorf("read capture: %w", err)
	}
	return c, nil
}

// LatestCapture returns the most recent capture with the given name.
func (s *Store) LatestCapture(ctx context.Context, name string) (Capture, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+captureColumns+`
		FROM captures
		WHERE name = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, NormalizeName(name))
	c, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Capture{}, fmt.Errorf("%w: name %s", ErrNotFound, name)
	}
	if err != nil {
		return Capture{}, fmt.Errorf("latest capture: %w", err)
	}
	return c, nil
}

// ReadPercentiles rebuilds the percentile table of a capture.
func (s *Store) ReadPercentiles(ctx context.Context, c Capture) (*harness.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stat, c5, q1, med, q3, c95
		FROM capture_percentiles
		WHERE capture_id = ?
		ORDER BY ord ASC
	`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("query percentiles: %w", err)
	}
	defer rows.Close()

	table := &harness.Table{Runs: c.Runs}
	for rows.Next() {
		var (
			row  harness.Row
			vals [5]sql.NullFloat64
		)
		if err := rows.Scan(&row.Stat, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4]); err != nil {
			return nil, fmt.Errorf("scan percentiles: %w", err)
		}
		for i, v := range vals {
			row.Values[i] = fromNullable(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate percentiles: %w", err)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: no percentiles for %s", ErrNotFound, c.ID)
	}
	return table, nil
}

// ReadRunStats returns the sorted values of one statistic.
func (s *Store) ReadRunStats(ctx context.Context, id string, st harness.Stat) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM run_stats
		WHERE capture_id = ? AND stat = ?
		ORDER BY rank ASC
	`, id, st.String())
	if err != nil {
		return nil, fmt.Errorf("query run stats: %w", err)
	}
	defer rows.Close()

	values := []float64{}
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan run stat: %w", err)
		}
		values = append(values, fromNullable(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run stats: %w", err)
	}
	return values, nil
}

// DeleteCapture removes a capture and its rows.
func (s *Store) DeleteCapture(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete capture: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete capture: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}
