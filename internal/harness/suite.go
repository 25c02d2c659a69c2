package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/molsim/internal/config"
	"github.com/roach88/molsim/internal/infection"
	"github.com/roach88/molsim/internal/random"
)

// Case actions.
const (
	ActionCompare = "compare"
	ActionWrite   = "write"
)

// GoldenSuffix is the file extension of golden percentile tables.
const GoldenSuffix = ".golden"

// Suite is a set of capture cases sharing fitted parameters.
type Suite struct {
	// Name identifies the suite.
	Name string `yaml:"name"`

	// Description explains what the suite validates.
	Description string `yaml:"description"`

	// Params is an optional CUE parameter file, relative to the suite file.
	// When empty the fitted defaults are used.
	Params string `yaml:"params,omitempty"`

	// GoldenDir holds the golden tables, relative to the suite file.
	// Defaults to "golden".
	GoldenDir string `yaml:"golden_dir,omitempty"`

	// Cases run in order.
	Cases []Case `yaml:"cases"`

	// dir is the directory of the suite file.
	dir string
}

// Case is one capture compared against, or written to, a golden table.
type Case struct {
	// Name is also the golden file name, without suffix.
	Name string `yaml:"name"`

	// Mode is a variant mode name.
	Mode string `yaml:"mode"`

	// ReplicationGamma enables multiplication-factor jitter.
	ReplicationGamma bool `yaml:"replication_gamma"`

	// Runs is the number of infections. Defaults to 200.
	Runs int `yaml:"runs,omitempty"`

	// Seed reseeds the source before the case. Defaults to random.DefaultSeed.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Action is "compare" (default) or "write".
	Action string `yaml:"action,omitempty"`
}

// DefaultRuns is the number of infections per case.
const DefaultRuns = 200

// LoadSuite reads and validates a suite YAML file. Unknown fields are
// rejected.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	s.dir = filepath.Dir(path)

	if err := validateSuite(&s); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &s, nil
}

func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		if _, err := infection.ParseMode(c.Mode); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if c.Runs < 0 {
			return fmt.Errorf("cases[%d]: runs must be positive", i)
		}
		if c.Runs == 0 {
			c.Runs = DefaultRuns
		}
		switch c.Action {
		case "":
			c.Action = ActionCompare
		case ActionCompare, ActionWrite:
		default:
			return fmt.Errorf("cases[%d]: unknown action %q", i, c.Action)
		}
	}
	return nil
}

// SuiteOptions adjust a suite run.
type SuiteOptions struct {
	// GoldenDir overrides the suite's golden directory.
	GoldenDir string

	// Update writes every case's table instead of comparing.
	Update bool

	// Runs overrides every case's run count when positive.
	Runs int

	// Filter is a glob on case names; empty runs every case.
	Filter string

	// Logger receives progress. Defaults to a discarding logger.
	Logger *slog.Logger
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name   string  `json:"name"`
	Action string  `json:"action"`
	Path   string  `json:"path"`
	Table  *Table  `json:"-"`
	Report *Report `json:"report,omitempty"`
}

// Pass reports whether the case wrote its table or matched its golden file.
func (r CaseResult) Pass() bool {
	return r.Report == nil || r.Report.OK()
}

// goldenDir resolves the directory golden tables are read from and written to.
func (s *Suite) goldenDir(override string) string {
	if override != "" {
		return override
	}
	dir := s.GoldenDir
	if dir == "" {
		dir = "golden"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.dir, dir)
	}
	return dir
}

// parameters loads the suite's parameter file or returns the defaults.
func (s *Suite) parameters() (*config.ParameterSet, error) {
	if s.Params == "" {
		return config.Default(), nil
	}
	path := s.Params
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	return config.LoadFile(path)
}

// RunSuite captures every case in order. Configuration errors abort the
// suite; comparison mismatches are collected in each case's Report.
func RunSuite(ctx context.Context, s *Suite, opts SuiteOptions) ([]CaseResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	params, err := s.parameters()
	if err != nil {
		return nil, err
	}
	dir := s.goldenDir(opts.GoldenDir)

	results := make([]CaseResult, 0, len(s.Cases))
	for _, c := range s.Cases {
		if opts.Filter != "" {
			matched, err := filepath.Match(opts.Filter, c.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		mode, err := infection.ParseMode(c.Mode)
		if err != nil {
			return nil, err
		}
		model, err := infection.NewModel(infection.Setup{
			Params:           params,
			Mode:             mode,
			ReplicationGamma: c.ReplicationGamma,
		})
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}

		seed := random.DefaultSeed
		if c.Seed != nil {
			seed = *c.Seed
		}
		runs := c.Runs
		if opts.Runs > 0 {
			runs = opts.Runs
		}

		capturer := NewCapturer(model, random.New(seed), WithLogger(logger.With("case", c.Name)))
		sample, err := capturer.Capture(ctx, runs)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		table, err := sample.Percentiles()
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}

		res := CaseResult{
			Name:   c.Name,
			Action: c.Action,
			Path:   filepath.Join(dir, c.Name+GoldenSuffix),
			Table:  table,
		}
		if opts.Update || c.Action == ActionWrite {
			res.Action = ActionWrite
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create golden dir: %w", err)
			}
			if err := table.WriteFile(res.Path); err != nil {
				return nil, err
			}
			logger.Info("golden table written", "case", c.Name, "path", res.Path)
		} else {
			res.Report = table.CompareFile(res.Path)
			logger.Info("golden table compared", "case", c.Name, "mismatches", len(res.Report.Mismatches))
		}
		results = append(results, res)
	}
	return results, nil
}
