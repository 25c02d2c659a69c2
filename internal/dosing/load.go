package dosing

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/molsim/internal/config"
)

// tableDoc is the YAML form of a dosage table.
type tableDoc struct {
	Name   string  `yaml:"name"`
	By     string  `yaml:"by"` // "age" or "mass"
	Ranges []Range `yaml:"ranges"`
}

// libraryDoc is the YAML form of a dosing file.
type libraryDoc struct {
	Tables    []tableDoc `yaml:"tables"`
	Schedules []Schedule `yaml:"schedules"`
}

// Library holds the dosage tables and schedules of one dosing file.
type Library struct {
	Tables    map[string]*Table
	Schedules map[string]Schedule
}

// LoadFile reads a YAML dosing file.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dosing file: %w", err)
	}
	return Load(data)
}

// Load parses a YAML dosing document. Unknown fields are rejected.
func Load(data []byte) (*Library, error) {
	var doc libraryDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, config.NewError(config.ErrCodeDosageTable, "", "parse dosing file: %v", err)
	}

	lib := &Library{
		Tables:    make(map[string]*Table, len(doc.Tables)),
		Schedules: make(map[string]Schedule, len(doc.Schedules)),
	}
	for _, td := range doc.Tables {
		if td.Name == "" {
			return nil, config.NewError(config.ErrCodeDosageTable, "", "table without a name")
		}
		var useMass bool
		switch td.By {
		case "age", "":
		case "mass":
			useMass = true
		default:
			return nil, config.NewError(config.ErrCodeDosageTable, td.Name, "by must be age or mass, got %q", td.By)
		}
		if _, dup := lib.Tables[td.Name]; dup {
			return nil, config.NewError(config.ErrCodeDosageTable, td.Name, "duplicate table")
		}
		t, err := NewTable(td.Name, useMass, td.Ranges)
		if err != nil {
			return nil, err
		}
		lib.Tables[td.Name] = t
	}
	for _, s := range doc.Schedules {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := lib.Schedules[s.Name]; dup {
			return nil, config.NewError(config.ErrCodeDosageTable, s.Name, "duplicate schedule")
		}
		lib.Schedules[s.Name] = s
	}
	return lib, nil
}

// Regimen looks up a schedule and a table by name.
func (l *Library) Regimen(schedule, table string) (Regimen, error) {
	s, ok := l.Schedules[schedule]
	if !ok {
		return Regimen{}, config.NewError(config.ErrCodeDosageTable, schedule, "unknown schedule")
	}
	t, ok := l.Tables[table]
	if !ok {
		return Regimen{}, config.NewError(config.ErrCodeDosageTable, table, "unknown dosage table")
	}
	return Regimen{Schedule: s, Table: t}, nil
}
