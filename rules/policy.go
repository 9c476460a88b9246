package rules

import (
	"fmt"

	"github.com/liamcoop/numclass/internal/config"
	"github.com/liamcoop/numclass/numbers"
)

// PolicyFromConfig builds the property policy selected by cfg. The returned
// engine is nil for the standard policy.
func PolicyFromConfig(cfg config.PolicyConfig) (numbers.Policy, *Engine, error) {
	if cfg.Engine == config.PolicyStandard {
		return numbers.StandardPolicy, nil, nil
	}

	extra := make([]*Rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		extra = append(extra, &Rule{
			Name:       rc.Name,
			Expression: rc.Expression,
			Priority:   rc.Priority,
			Active:     true,
		})
	}

	engine, err := NewDefaultEngine(extra...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build property rules: %w", err)
	}

	return engine, engine, nil
}
