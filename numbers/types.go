package numbers

// Sign is the sign class of a number
type Sign string

const (
	Positive Sign = "positive"
	Negative Sign = "negative"
	Zero     Sign = "zero"
)

// Parity is the even/odd class of a number
type Parity string

const (
	Even Parity = "even"
	Odd  Parity = "odd"
)

// Property is a tag reported in a classification result
type Property string

const (
	PropertyArmstrong Property = "armstrong"
	PropertyPrime     Property = "prime"
	PropertyPerfect   Property = "perfect"
	PropertyEven      Property = "even"
	PropertyOdd       Property = "odd"
)

// Facts holds every predicate evaluated for one number.
// Policies decide which of them become reported properties.
type Facts struct {
	Number    float64
	Integer   bool
	Sign      Sign
	Prime     bool
	Perfect   bool
	Armstrong bool
	Parity    Parity
	DigitSum  int
}

// PositiveInteger reports whether the number is an integer greater than zero
func (f Facts) PositiveInteger() bool {
	return f.Integer && f.Number > 0
}

// Result is the classification record returned for a single number.
// It is created per call and never mutated afterwards.
type Result struct {
	Number      float64    `json:"number"`
	Sign        Sign       `json:"sign_class"`
	IsPrime     bool       `json:"is_prime"`
	IsPerfect   bool       `json:"is_perfect"`
	IsArmstrong bool       `json:"is_armstrong"`
	Parity      Parity     `json:"parity"`
	DigitSum    int        `json:"digit_sum"`
	Properties  []Property `json:"properties"`
	FunFact     string     `json:"fun_fact"`
}

// HasProperty reports whether p was included in the result's properties
func (r Result) HasProperty(p Property) bool {
	for _, prop := range r.Properties {
		if prop == p {
			return true
		}
	}
	return false
}
