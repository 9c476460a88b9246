package rules

import (
	"github.com/google/uuid"

	"github.com/liamcoop/numclass/numbers"
)

// DefaultRules returns the canonical property policy as CEL rules:
// armstrong, then even or odd, then prime and perfect for positive integers.
func DefaultRules() []*Rule {
	defs := []struct {
		tag        numbers.Property
		expression string
	}{
		{numbers.PropertyArmstrong, `armstrong`},
		{numbers.PropertyEven, `parity == "even"`},
		{numbers.PropertyOdd, `parity == "odd"`},
		{numbers.PropertyPrime, `integer && number > 0.0 && prime`},
		{numbers.PropertyPerfect, `integer && number > 0.0 && perfect`},
	}

	rules := make([]*Rule, len(defs))
	for i, d := range defs {
		rules[i] = &Rule{
			ID:         uuid.NewString(),
			Name:       string(d.tag),
			Expression: d.expression,
			Priority:   (i + 1) * 10,
			Active:     true,
		}
	}
	return rules
}
