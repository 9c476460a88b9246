package numbers

// FallbackFunc produces a fun fact from already evaluated facts when none was
// resolved by the caller
type FallbackFunc func(f Facts) string

// Classifier turns a validated number into a Result.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	policy   Policy
	fallback FallbackFunc
}

// Option configures a Classifier
type Option func(*Classifier)

// WithPolicy replaces the StandardPolicy
func WithPolicy(p Policy) Option {
	return func(c *Classifier) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithFallback replaces DefaultFunFact
func WithFallback(fn FallbackFunc) Option {
	return func(c *Classifier) {
		if fn != nil {
			c.fallback = fn
		}
	}
}

// NewClassifier creates a classifier using StandardPolicy and DefaultFunFact
// unless overridden
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		policy:   StandardPolicy,
		fallback: DefaultFunFact,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify evaluates n and assembles its result. funFact is passed through
// unchanged; when empty the fallback is used.
func (c *Classifier) Classify(n float64, funFact string) Result {
	f := Evaluate(n)

	if funFact == "" {
		funFact = c.fallback(f)
	}

	props := c.policy.Properties(f)
	if props == nil {
		props = []Property{}
	}

	return Result{
		Number:      n,
		Sign:        f.Sign,
		IsPrime:     f.PositiveInteger() && f.Prime,
		IsPerfect:   f.PositiveInteger() && f.Perfect,
		IsArmstrong: f.Armstrong,
		Parity:      f.Parity,
		DigitSum:    f.DigitSum,
		Properties:  props,
		FunFact:     funFact,
	}
}
