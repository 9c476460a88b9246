package numbers

import (
	"math"
	"strconv"
)

// MaxExactInteger is the largest magnitude at which every integer is exactly
// representable as a float64. Integer predicates return false beyond it.
const MaxExactInteger = 1 << 53

// IsPrime reports whether n is prime using 6k±1 trial division
func IsPrime(n int64) bool {
	if n < 2 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := int64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// IsPerfect reports whether n equals the sum of its proper divisors.
// 1 is not perfect: its proper divisor sum is 0.
func IsPerfect(n int64) bool {
	if n < 2 {
		return false
	}
	sum := int64(1)
	for i := int64(2); i <= n/i; i++ {
		if n%i != 0 {
			continue
		}
		sum += i
		if j := n / i; j != i {
			sum += j
		}
		if sum > n {
			return false
		}
	}
	return sum == n
}

// IsArmstrong reports whether |n| equals the sum of its decimal digits each
// raised to the number of digits. Non-integers are never Armstrong numbers.
func IsArmstrong(n float64) bool {
	v, ok := exactInteger(n)
	if !ok {
		return false
	}
	if v < 0 {
		v = -v
	}

	digits := decimalDigits(math.Abs(n))
	power := len(digits)

	var sum int64
	for _, d := range digits {
		sum += ipow(int64(d), power)
		if sum > v {
			return false
		}
	}
	return sum == v
}

// DigitSum returns the sum of the decimal digits of |n|.
// Fractional digits count; the decimal point does not.
func DigitSum(n float64) int {
	sum := 0
	for _, d := range decimalDigits(math.Abs(n)) {
		sum += d
	}
	return sum
}

// ParityOf returns Even when n mod 2 is zero, Odd otherwise
func ParityOf(n float64) Parity {
	if math.Mod(n, 2) == 0 {
		return Even
	}
	return Odd
}

// SignOf classifies n as positive, negative or zero
func SignOf(n float64) Sign {
	switch {
	case n > 0:
		return Positive
	case n < 0:
		return Negative
	default:
		return Zero
	}
}

// IsInteger reports whether n is a finite whole number
func IsInteger(n float64) bool {
	return !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n)
}

// Evaluate runs every predicate against n
func Evaluate(n float64) Facts {
	f := Facts{
		Number:    n,
		Integer:   IsInteger(n),
		Sign:      SignOf(n),
		Armstrong: IsArmstrong(n),
		Parity:    ParityOf(n),
		DigitSum:  DigitSum(n),
	}

	if v, ok := exactInteger(n); ok && v > 0 {
		f.Prime = IsPrime(v)
		// a prime's proper divisors sum to 1, so it is never perfect
		f.Perfect = !f.Prime && IsPerfect(v)
	}

	return f
}

// exactInteger converts n to int64 when it is an integer inside the
// exactly representable range
func exactInteger(n float64) (int64, bool) {
	if !IsInteger(n) || math.Abs(n) > MaxExactInteger {
		return 0, false
	}
	return int64(n), true
}

// decimalDigits returns the digits of the shortest decimal form of a
// non-negative n, most significant first
func decimalDigits(n float64) []int {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	digits := make([]int, 0, len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	return digits
}

func ipow(base int64, exp int) int64 {
	result := int64(1)
	for range exp {
		result *= base
	}
	return result
}
