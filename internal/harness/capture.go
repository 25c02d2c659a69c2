package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/molsim/internal/dosing"
	"github.com/roach88/molsim/internal/infection"
	"github.com/roach88/molsim/internal/random"
	"github.com/roach88/molsim/internal/sim"
)

// NoDrugTag is the drug-model tag of infections the harness creates.
const NoDrugTag uint32 = 0xFFFFFFFF

// Capturer drives infections of one model to extinction.
type Capturer struct {
	model    *infection.Model
	src      *random.Source
	clock    *sim.Clock
	survival dosing.SurvivalFactor
	logger   *slog.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Capturer) { c.logger = l }
}

// WithSurvival sets the external survival factor applied each day. The
// default is dosing.NoDrug.
func WithSurvival(f dosing.SurvivalFactor) Option {
	return func(c *Capturer) { c.survival = f }
}

// NewCapturer creates a capturer drawing from src.
func NewCapturer(model *infection.Model, src *random.Source, opts ...Option) *Capturer {
	c := &Capturer{
		model:    model,
		src:      src,
		clock:    sim.NewClock(),
		survival: dosing.NoDrug{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trace is the outcome of one infection.
type Trace struct {
	// Densities holds one value per blood-stage day until extinction.
	Densities []float64

	// Truncated is set when the infection hit the blood-stage day bound.
	Truncated bool
}

// Stats reduces the trace. A truncated trace never reached its last
// positive day, so its duration-derived statistics are NaN.
func (tr Trace) Stats() RunStats {
	r := Reduce(tr.Densities)
	if tr.Truncated {
		r[LastPosDay] = math.NaN()
		r[PropPos1st] = math.NaN()
		r[PropPos2nd] = math.NaN()
	}
	return r
}

// Run steps one new infection from inoculation until it reports extinction.
func (c *Capturer) Run() Trace {
	c.clock.Reset()
	inf := c.model.NewInfection(c.src, NoDrugTag, c.clock.Now())

	var tr Trace
	for now := c.clock.Now(); !inf.Update(c.survival.Survival(now), now); now = c.clock.Next() {
		if inf.InBloodStage() {
			tr.Densities = append(tr.Densities, inf.Density())
		}
	}
	tr.Truncated = inf.Truncated()
	return tr
}

// Capture runs n infections, reduces each to its statistics and returns the
// sorted sample. ctx is checked between runs.
func (c *Capturer) Capture(ctx context.Context, n int) (*Sample, error) {
	if n <= 0 {
		return nil, fmt.Errorf("run count must be positive, got %d", n)
	}

	sample := NewSample(n)
	truncated := 0
	for run := 0; run < n; run++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("capture cancelled after %d runs: %w", run, err)
		}
		tr := c.Run()
		if tr.Truncated {
			truncated++
			c.logger.Warn("infection truncated", "run", run, "blood_stage_days", len(tr.Densities))
		}
		stats := tr.Stats()
		sample.Add(stats)
		c.logger.Debug("run captured",
			"run", run,
			"days", len(tr.Densities),
			"no_max", stats[NoMax],
			"last_pos_day", stats[LastPosDay],
		)
	}
	sample.Sort()

	c.logger.Info("capture complete",
		"mode", c.model.Mode().String(),
		"replication_gamma", c.model.ReplicationGamma(),
		"runs", n,
		"truncated", truncated,
		"draws", c.src.Draws(),
	)
	return sample, nil
}
