package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// parameterSchema closes the parameter document: unknown fields are errors.
const parameterSchema = `
#Parameters: {
	first_max_mean:     number
	first_max_sd:       number & >0
	diff_pos_days_mean: number
	diff_pos_days_sd:   number & >0
}
`

// requiredParams lists the fields in the order they are reported when missing.
var requiredParams = []string{
	ParamFirstMaxMean,
	ParamFirstMaxSD,
	ParamDiffPosDaysMean,
	ParamDiffPosDaysSD,
}

// LoadFile reads a CUE parameter file.
func LoadFile(path string) (*ParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}
	return Load(path, data)
}

// Load parses and validates a CUE parameter document. name is used in
// position information only.
func Load(name string, data []byte) (*ParameterSet, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(parameterSchema).LookupPath(cue.ParsePath("#Parameters"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile parameter schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return nil, NewError(ErrCodeInvalidParameter, name, "parse: %v", err)
	}

	// Report absent fields by name before unification folds them into a
	// generic incompleteness error.
	for _, param := range requiredParams {
		if !doc.LookupPath(cue.ParsePath(param)).Exists() {
			return nil, NewError(ErrCodeMissingParameter, param, "required fitted parameter not set in %s", name)
		}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, NewError(ErrCodeInvalidParameter, name, "%v", err)
	}

	values := make(map[string]float64, len(requiredParams))
	for _, param := range requiredParams {
		v, err := unified.LookupPath(cue.ParsePath(param)).Float64()
		if err != nil {
			return nil, NewError(ErrCodeInvalidParameter, param, "not a number: %v", err)
		}
		values[param] = v
	}

	return New(
		values[ParamFirstMaxMean],
		values[ParamFirstMaxSD],
		values[ParamDiffPosDaysMean],
		values[ParamDiffPosDaysSD],
	)
}
