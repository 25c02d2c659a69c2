package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/molsim/internal/harness"
)

// NormalizeName returns the stored form of a capture name: trimmed and in
// Unicode NFC, so visually identical names match.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Capture describes one archived capture session.
type Capture struct {
	ID               string             `json:"id"`
	Seq              int64              `json:"seq"`
	Name             string             `json:"name"`
	Mode             string             `json:"mode"`
	ReplicationGamma bool               `json:"replication_gamma"`
	Seed             uint64             `json:"seed"`
	Runs             int                `json:"runs"`
	Params           map[string]float64 `json:"params"`
}

// WriteCapture archives a capture with its sorted sample and percentile
// table in one transaction. ID and Seq are assigned by the store and the
// completed record is returned.
func (s *Store) WriteCapture(ctx context.Context, c Capture, sample *harness.Sample, table *harness.Table) (Capture, error) {
	c.Name = NormalizeName(c.Name)
	if c.Name == "" {
		return Capture{}, fmt.Errorf("write capture: name is required")
	}
	if sample.Len() != c.Runs {
		return Capture{}, fmt.Errorf("write capture: sample has %d runs, capture declares %d", sample.Len(), c.Runs)
	}

	paramsJSON, err := json.Marshal(c.Params)
	if err != nil {
		return Capture{}, fmt.Errorf("write capture: marshal params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Capture{}, fmt.Errorf("write capture: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM captures`).Scan(&c.Seq); err != nil {
		return Capture{}, fmt.Errorf("write capture: next seq: %w", err)
	}
	c.ID = s.ids.Generate()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO captures
		(id, seq, name, mode, replication_gamma, seed, runs, params)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.Seq,
		c.Name,
		c.Mode,
		c.ReplicationGamma,
		// SQLite integers are signed; seeds round-trip through the bit pattern.
		int64(c.Seed),
		c.Runs,
		string(paramsJSON),
	)
	if err != nil {
		return Capture{}, fmt.Errorf("write capture: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_stats (capture_id, stat, rank, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return Capture{}, fmt.Errorf("write capture: prepare run stats: %w", err)
	}
	defer stmt.Close()
	for _, st := range harness.Stats() {
		for rank, v := range sample.Values(st) {
			if _, err := stmt.ExecContext(ctx, c.ID, st.String(), rank, nullable(v)); err != nil {
				return Capture{}, fmt.Errorf("write capture: run stat %s[%d]: %w", st, rank, err)
			}
		}
	}

	for ord, row := range table.Rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO capture_percentiles
			(capture_id, stat, ord, c5, q1, med, q3, c95)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			c.ID, row.Stat, ord,
			nullable(row.Values[0]),
			nullable(row.Values[1]),
			nullable(row.Values[2]),
			nullable(row.Values[3]),
			nullable(row.Values[4]),
		)
		if err != nil {
			return Capture{}, fmt.Errorf("write capture: percentiles %s: %w", row.Stat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Capture{}, fmt.Errorf("write capture: commit: %w", err)
	}
	return c, nil
}

// nullable maps NaN to NULL. Infinities are stored as-is.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// fromNullable maps NULL back to NaN.
func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
