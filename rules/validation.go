package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/liamcoop/numclass/numbers"
)

var (
	// ErrInvalidRule is wrapped by every validation failure
	ErrInvalidRule = errors.New("invalid rule")

	// ErrReservedTag is returned when a rule would add, change or remove one
	// of the built-in property tags
	ErrReservedTag = errors.New("tag is reserved for a built-in property")
)

const (
	maxTagLength        = 64
	maxExpressionLength = 4096
)

var tagPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateRule checks the tag name and expression shape.
// Whether the expression compiles is checked by the engine.
func ValidateRule(r *Rule) error {
	if err := validateTag(r.Name); err != nil {
		return fmt.Errorf("%w: tag %q: %v", ErrInvalidRule, r.Name, err)
	}
	if IsCoreTag(r.Name) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRule, ErrReservedTag, r.Name)
	}

	expr := strings.TrimSpace(r.Expression)
	if expr == "" {
		return fmt.Errorf("%w: tag %q has an empty expression", ErrInvalidRule, r.Name)
	}
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("%w: tag %q expression length %d exceeds maximum of %d", ErrInvalidRule, r.Name, len(expr), maxExpressionLength)
	}

	return nil
}

// IsCoreTag reports whether name is one of the built-in property tags. Only
// DefaultRules may carry them.
func IsCoreTag(name string) bool {
	switch numbers.Property(name) {
	case numbers.PropertyArmstrong, numbers.PropertyEven, numbers.PropertyOdd,
		numbers.PropertyPrime, numbers.PropertyPerfect:
		return true
	}
	return false
}

// validateTag requires a lower-case identifier that is not a CEL keyword
func validateTag(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("tag cannot be empty")
	}
	if len(name) > maxTagLength {
		return fmt.Errorf("tag length %d exceeds maximum of %d characters", len(name), maxTagLength)
	}

	if !tagPattern.MatchString(name) {
		return fmt.Errorf("must match pattern %s", tagPattern)
	}

	if isReservedKeyword(name) {
		return fmt.Errorf("cannot use reserved keyword %q", name)
	}

	return nil
}

// isReservedKeyword checks if a name is a CEL reserved keyword
func isReservedKeyword(name string) bool {
	reservedKeywords := map[string]bool{
		"true": true, "false": true, "null": true,
		"if": true, "else": true, "for": true, "while": true,
		"break": true, "continue": true, "return": true,
		"var": true, "let": true, "const": true, "function": true,
		"in": true, "as": true, "import": true, "package": true,
		"namespace": true, "loop": true, "void": true,
	}

	return reservedKeywords[name]
}
