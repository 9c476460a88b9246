package rules

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/liamcoop/numclass/internal/config"
	"github.com/liamcoop/numclass/numbers"
)

func TestPolicyFromConfigStandard(t *testing.T) {
	policy, engine, err := PolicyFromConfig(config.PolicyConfig{Engine: config.PolicyStandard})
	if err != nil {
		t.Fatalf("PolicyFromConfig() failed: %v", err)
	}
	if engine != nil {
		t.Error("standard policy should not build a rules engine")
	}

	got := policy.Properties(numbers.Evaluate(6))
	want := []numbers.Property{numbers.PropertyArmstrong, numbers.PropertyEven, numbers.PropertyPerfect}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Properties(6) mismatch (-want +got):\n%s", diff)
	}
}

// TestPolicyFromConfigExtraRuleWithoutPriority verifies a configured tag
// with no priority is still appended after the built-in tags
func TestPolicyFromConfigExtraRuleWithoutPriority(t *testing.T) {
	policy, engine, err := PolicyFromConfig(config.PolicyConfig{
		Engine: config.PolicyCEL,
		Rules:  []config.RuleConfig{{Name: "lucky", Expression: `digit_sum == 10`}},
	})
	if err != nil {
		t.Fatalf("PolicyFromConfig() failed: %v", err)
	}
	if engine == nil {
		t.Fatal("cel policy should expose its engine")
	}

	got := policy.Properties(numbers.Evaluate(28))
	want := []numbers.Property{numbers.PropertyEven, numbers.PropertyPerfect, "lucky"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Properties(28) mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyFromConfigRejectsCoreTag(t *testing.T) {
	_, _, err := PolicyFromConfig(config.PolicyConfig{
		Engine: config.PolicyCEL,
		Rules:  []config.RuleConfig{{Name: "odd", Expression: `true`, Priority: 100}},
	})
	if !errors.Is(err, ErrReservedTag) {
		t.Errorf("PolicyFromConfig() error = %v, want ErrReservedTag", err)
	}
}
