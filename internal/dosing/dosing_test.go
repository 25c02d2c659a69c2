package dosing

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/molsim/internal/config"
	"github.com/roach88/molsim/internal/infection"
	"github.com/roach88/molsim/internal/random"
	"github.com/roach88/molsim/internal/sim"
)

func ageTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("al_age", false, []Range{
		{Upper: 9, Multiplier: 2},
		{Upper: 3, Multiplier: 1},
		{Upper: 15, Multiplier: 3},
		{Upper: 100, Multiplier: 4},
	})
	require.NoError(t, err)
	return tbl
}

func TestTable_Multiplier(t *testing.T) {
	tbl := ageTable(t)

	tests := []struct {
		name string
		key  float64
		want float64
	}{
		{"below first", 0.5, 1},
		{"equal to threshold takes next bucket", 3, 2},
		{"inside bucket", 8.99, 2},
		{"equal to middle threshold", 9, 3},
		{"negative key", -1, 1},
		{"just below last", 99.9, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Multiplier(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_KeyBeyondLastThreshold(t *testing.T) {
	tbl := ageTable(t)

	for _, key := range []float64{100, 150, math.Inf(1), math.NaN()} {
		_, err := tbl.Multiplier(key)
		require.Error(t, err, "key %v", key)
		assert.True(t, config.IsDosageTable(err))
	}
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
	}{
		{"empty", nil},
		{"duplicate threshold", []Range{{Upper: 3, Multiplier: 1}, {Upper: 3, Multiplier: 2}}},
		{"NaN threshold", []Range{{Upper: math.NaN(), Multiplier: 1}}},
		{"negative multiplier", []Range{{Upper: 3, Multiplier: -1}}},
		{"infinite multiplier", []Range{{Upper: 3, Multiplier: math.Inf(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("bad", false, tt.ranges)
			require.Error(t, err)
			assert.True(t, config.IsDosageTable(err))
		})
	}
}

func TestRegimen_Doses(t *testing.T) {
	r := Regimen{
		Schedule: Schedule{Name: "al6", Medications: []Medication{
			{Drug: "AR", Mg: 20, Hour: 0},
			{Drug: "AR", Mg: 20, Hour: 8},
			{Drug: "AR", Mg: 20, Hour: 36},
		}},
		Table: ageTable(t),
	}

	doses, err := r.Doses(10, 5)
	require.NoError(t, err)
	require.Len(t, doses, 3)

	assert.Equal(t, Dose{Drug: "AR", Mg: 60, Day: 5, Hour: 0}, doses[0])
	assert.Equal(t, Dose{Drug: "AR", Mg: 60, Day: 5, Hour: 8}, doses[1])
	assert.Equal(t, Dose{Drug: "AR", Mg: 60, Day: 6, Hour: 12}, doses[2])

	_, err = r.Doses(120, 5)
	require.Error(t, err)
	assert.True(t, config.IsDosageTable(err))

	_, err = Regimen{Schedule: r.Schedule}.Doses(10, 0)
	assert.True(t, config.IsDosageTable(err))
}

func TestKillSchedule(t *testing.T) {
	doses := []Dose{
		{Drug: "AR", Mg: 10, Day: 2},
		{Drug: "AR", Mg: 10, Day: 3},
	}
	k := NewKillSchedule(doses, 0.1, 2)

	single := math.Exp(-1)
	assert.Equal(t, 1.0, k.Survival(0))
	assert.Equal(t, 1.0, k.Survival(1))
	assert.InDelta(t, single, k.Survival(2), 1e-12)
	assert.InDelta(t, single*single, k.Survival(3), 1e-12)
	assert.InDelta(t, single, k.Survival(4), 1e-12)
	assert.Equal(t, 1.0, k.Survival(5))
	assert.InDelta(t, 1-single, k.Efficacy(2), 1e-12)

	var f SurvivalFactor = NoDrug{}
	assert.Equal(t, 1.0, f.Survival(42))
}

func TestLoadFile(t *testing.T) {
	lib, err := LoadFile(filepath.Join("testdata", "artemether_lumefantrine.yaml"))
	require.NoError(t, err)

	require.Contains(t, lib.Tables, "al_age")
	require.Contains(t, lib.Tables, "al_mass")
	assert.False(t, lib.Tables["al_age"].UseMass())
	assert.True(t, lib.Tables["al_mass"].UseMass())
	assert.Equal(t, 4, lib.Tables["al_mass"].Len())

	r, err := lib.Regimen("al6", "al_mass")
	require.NoError(t, err)
	doses, err := r.Doses(25, 0)
	require.NoError(t, err)
	require.Len(t, doses, 6)
	assert.Equal(t, 60.0, doses[0].Mg)
	assert.Equal(t, sim.Day(2), doses[5].Day)

	_, err = lib.Regimen("al6", "missing")
	assert.True(t, config.IsDosageTable(err))
	_, err = lib.Regimen("missing", "al_age")
	assert.True(t, config.IsDosageTable(err))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "tables:\n  - name: t\n    colour: red\n"},
		{"bad key kind", "tables:\n  - name: t\n    by: height\n    ranges: [{upper: 1, multiplier: 1}]\n"},
		{"duplicate table", "tables:\n  - {name: t, ranges: [{upper: 1, multiplier: 1}]}\n  - {name: t, ranges: [{upper: 1, multiplier: 1}]}\n"},
		{"schedule without drug", "schedules:\n  - name: s\n    medicate: [{mg: 1, hour: 0}]\n"},
		{"negative hour", "schedules:\n  - name: s\n    medicate: [{drug: AR, mg: 1, hour: -2}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, config.IsDosageTable(err))
		})
	}
}

// A treated infection is cleared sooner than an untreated one from the same
// draws.
func TestKillSchedule_ShortensInfection(t *testing.T) {
	m, err := infection.NewModel(infection.Setup{Params: config.Default(), Mode: infection.ModeOriginal})
	require.NoError(t, err)

	run := func(f SurvivalFactor) sim.Day {
		inf := m.NewInfection(random.New(random.DefaultSeed), 0, 0)
		for now := sim.Day(0); ; now++ {
			if inf.Update(f.Survival(now), now) {
				return now
			}
		}
	}

	doses, err := Regimen{
		Schedule: Schedule{Name: "s", Medications: []Medication{{Drug: "AR", Mg: 20, Hour: 0}}},
		Table:    ageTable(t),
	}.Doses(1, 25)
	require.NoError(t, err)

	untreated := run(NoDrug{})
	treated := run(NewKillSchedule(doses, 0.5, 3))
	assert.Less(t, treated, untreated)
}
