package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/roach88/molsim/internal/harness"
)

// createTestStore creates a new file-backed store with fixed IDs.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(NewFixedGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSample returns a sorted sample of n runs. The first run has a
// NaN slope_max.
func createTestSample(t *testing.T, n int) (*harness.Sample, *harness.Table) {
	t.Helper()
	sample := harness.NewSample(n)
	for run := 0; run < n; run++ {
		var r harness.RunStats
		for i := range r {
			r[i] = float64(n-run) + float64(i)/10
		}
		if run == 0 {
			r[harness.SlopeMax] = math.NaN()
		}
		sample.Add(r)
	}
	table, err := sample.Percentiles()
	if err != nil {
		t.Fatalf("Percentiles() failed: %v", err)
	}
	return sample, table
}

func createTestCapture(name string, runs int) Capture {
	return Capture{
		Name:             name,
		Mode:             "original",
		ReplicationGamma: false,
		Seed:             1095,
		Runs:             runs,
		Params: map[string]float64{
			"first_max_mean":     4.7601,
			"first_max_sd":       0.5008,
			"diff_pos_days_mean": 2.2736,
			"diff_pos_days_sd":   0.2315,
		},
	}
}

func writeTestCapture(t *testing.T, s *Store, name string, runs int) Capture {
	t.Helper()
	sample, table := createTestSample(t, runs)
	c, err := s.WriteCapture(context.Background(), createTestCapture(name, runs), sample, table)
	if err != nil {
		t.Fatalf("WriteCapture() failed: %v", err)
	}
	return c
}
