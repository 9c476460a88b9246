package numbers

import (
	"fmt"
	"math"
	"strings"
)

// DefaultFunFact builds a deterministic fun fact from the number's own
// properties. Armstrong numbers get their digit-power breakdown.
func DefaultFunFact(f Facts) string {
	n := f.Number
	text := Format(n)

	switch {
	case f.Armstrong:
		digits := decimalDigits(math.Abs(n))
		terms := make([]string, len(digits))
		for i, d := range digits {
			terms[i] = fmt.Sprintf("%d^%d", d, len(digits))
		}
		return fmt.Sprintf("%s is an Armstrong number because %s = %s",
			text, strings.Join(terms, " + "), Format(math.Abs(n)))
	case f.PositiveInteger() && f.Perfect:
		return fmt.Sprintf("%s is a perfect number.", text)
	case f.PositiveInteger() && f.Prime:
		return fmt.Sprintf("%s is a prime number.", text)
	case f.Parity == Even:
		return fmt.Sprintf("%s is an even number.", text)
	default:
		return fmt.Sprintf("%s is an odd number.", text)
	}
}
