package numbers

// Policy decides which properties are reported for a set of facts, and in
// what order
type Policy interface {
	Properties(f Facts) []Property
}

// PolicyFunc adapts a plain function to the Policy interface
type PolicyFunc func(f Facts) []Property

// Properties calls fn(f)
func (fn PolicyFunc) Properties(f Facts) []Property {
	return fn(f)
}

// StandardPolicy reports armstrong, then exactly one of even/odd, then prime
// and perfect for positive integers only
var StandardPolicy Policy = PolicyFunc(standardProperties)

func standardProperties(f Facts) []Property {
	props := make([]Property, 0, 4)

	if f.Armstrong {
		props = append(props, PropertyArmstrong)
	}

	if f.Parity == Even {
		props = append(props, PropertyEven)
	} else {
		props = append(props, PropertyOdd)
	}

	if f.PositiveInteger() && f.Prime {
		props = append(props, PropertyPrime)
	}

	if f.PositiveInteger() && f.Perfect {
		props = append(props, PropertyPerfect)
	}

	return props
}
