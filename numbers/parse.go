package numbers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingInput is returned when no number was supplied
	ErrMissingInput = errors.New("number parameter is missing")

	// ErrUnparsableInput is returned when the text is not a finite number
	ErrUnparsableInput = errors.New("invalid input - non-numeric value")
)

// Parse converts user-supplied text into a finite number.
// Surrounding whitespace is ignored; NaN, infinities and Go digit separators
// are rejected. Negative zero is returned as 0.
func Parse(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrMissingInput
	}
	if strings.ContainsRune(s, '_') {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableInput, s)
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableInput, s)
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrUnparsableInput, s)
	}
	if n == 0 {
		n = 0
	}

	return n, nil
}

// Format renders n in its shortest decimal form, without exponent
func Format(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
