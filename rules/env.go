package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/numclass/numbers"
)

// Variables available to rule expressions, with their CEL types
var factVariables = map[string]*cel.Type{
	"number":    cel.DoubleType,
	"integer":   cel.BoolType,
	"sign":      cel.StringType,
	"prime":     cel.BoolType,
	"perfect":   cel.BoolType,
	"armstrong": cel.BoolType,
	"parity":    cel.StringType,
	"digit_sum": cel.IntType,
}

// NewFactsEnv creates a CEL environment declaring every fact variable
func NewFactsEnv() (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(factVariables))
	for name, typ := range factVariables {
		opts = append(opts, cel.Variable(name, typ))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return env, nil
}

// Activation converts facts into the variable bindings used for evaluation
func Activation(f numbers.Facts) map[string]any {
	return map[string]any{
		"number":    f.Number,
		"integer":   f.Integer,
		"sign":      string(f.Sign),
		"prime":     f.Prime,
		"perfect":   f.Perfect,
		"armstrong": f.Armstrong,
		"parity":    string(f.Parity),
		"digit_sum": int64(f.DigitSum),
	}
}
