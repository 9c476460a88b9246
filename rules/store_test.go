package rules

import (
	"errors"
	"testing"
	"time"
)

// TestRuleStoreInterface verifies at compile time that InMemoryRuleStore implements RuleStore
func TestRuleStoreInterface(t *testing.T) {
	var _ RuleStore = (*InMemoryRuleStore)(nil)
}

func TestInMemoryRuleStoreAdd(t *testing.T) {
	store := NewInMemoryRuleStore()

	rule := &Rule{ID: "test-1", Name: "even", Expression: `parity == "even"`, Active: true}
	if err := store.Add(rule); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	retrieved, err := store.Get("test-1")
	if err != nil {
		t.Fatalf("Get() failed after Add(): %v", err)
	}
	if retrieved.Name != "even" {
		t.Errorf("Retrieved rule Name = %s, want even", retrieved.Name)
	}
	if retrieved.CreatedAt.IsZero() || retrieved.UpdatedAt.IsZero() {
		t.Error("Add() should set timestamps")
	}

	if err := store.Add(&Rule{ID: "test-1"}); !errors.Is(err, ErrRuleExists) {
		t.Errorf("duplicate Add() error = %v, want ErrRuleExists", err)
	}
}

func TestInMemoryRuleStoreGetMissing(t *testing.T) {
	store := NewInMemoryRuleStore()

	if _, err := store.Get("missing"); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("Get() error = %v, want ErrRuleNotFound", err)
	}
}

// TestInMemoryRuleStoreListActiveOrder verifies active rules come back by
// priority, then name, with inactive rules filtered out
func TestInMemoryRuleStoreListActiveOrder(t *testing.T) {
	store := NewInMemoryRuleStore()

	store.Add(&Rule{ID: "c", Name: "zeta", Priority: 20, Active: true})
	store.Add(&Rule{ID: "a", Name: "beta", Priority: 10, Active: true})
	store.Add(&Rule{ID: "b", Name: "alpha", Priority: 10, Active: true})
	store.Add(&Rule{ID: "d", Name: "gamma", Priority: 5, Active: false})

	active, err := store.ListActive()
	if err != nil {
		t.Fatalf("ListActive() failed: %v", err)
	}

	want := []string{"b", "a", "c"}
	if len(active) != len(want) {
		t.Fatalf("ListActive() returned %d rules, want %d", len(active), len(want))
	}
	for i, id := range want {
		if active[i].ID != id {
			t.Errorf("active[%d] = %s, want %s", i, active[i].ID, id)
		}
	}
}

// TestInMemoryRuleStoreListsCoreTagsFirst verifies built-in tags precede
// extra tags whatever their priorities
func TestInMemoryRuleStoreListsCoreTagsFirst(t *testing.T) {
	store := NewInMemoryRuleStore()

	store.Add(&Rule{ID: "x", Name: "lucky", Priority: 0, Active: true})
	store.Add(&Rule{ID: "p", Name: "prime", Priority: 40, Active: true})
	store.Add(&Rule{ID: "y", Name: "big", Priority: -5, Active: true})
	store.Add(&Rule{ID: "a", Name: "armstrong", Priority: 10, Active: true})

	active, _ := store.ListActive()

	want := []string{"a", "p", "y", "x"}
	if len(active) != len(want) {
		t.Fatalf("ListActive() returned %d rules, want %d", len(active), len(want))
	}
	for i, id := range want {
		if active[i].ID != id {
			t.Errorf("active[%d] = %s, want %s", i, active[i].ID, id)
		}
	}
}

// TestInMemoryRuleStoreUpdatePreservesCreatedAt verifies Update keeps CreatedAt
func TestInMemoryRuleStoreUpdatePreservesCreatedAt(t *testing.T) {
	store := NewInMemoryRuleStore()

	store.Add(&Rule{ID: "r", Name: "odd", Expression: `parity == "odd"`, Active: true})
	original, _ := store.Get("r")
	createdAt := original.CreatedAt

	time.Sleep(5 * time.Millisecond)

	if err := store.Update(&Rule{ID: "r", Name: "odd", Expression: `!(parity == "even")`, Active: true}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	updated, _ := store.Get("r")
	if !updated.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt changed from %v to %v", createdAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(createdAt) {
		t.Error("UpdatedAt should advance on Update()")
	}

	if err := store.Update(&Rule{ID: "missing"}); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("Update() of missing rule error = %v, want ErrRuleNotFound", err)
	}
}

func TestInMemoryRuleStoreDelete(t *testing.T) {
	store := NewInMemoryRuleStore()
	store.Add(&Rule{ID: "r", Name: "prime", Active: true})

	if err := store.Delete("r"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get("r"); err == nil {
		t.Error("Get() should fail after Delete()")
	}
	if err := store.Delete("r"); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRuleNotFound", err)
	}
}

func TestRulesCache(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())

	if cache.Get() != nil {
		t.Error("new cache should miss")
	}

	rules := []*Rule{{ID: "a"}, {ID: "b"}}
	cache.Set(rules)

	got := cache.Get()
	if len(got) != 2 {
		t.Fatalf("Get() returned %d rules, want 2", len(got))
	}

	// Mutating the returned slice must not affect the cache
	got[0] = &Rule{ID: "changed"}
	if cache.Get()[0].ID != "a" {
		t.Error("cache should hand out copies")
	}

	cache.Invalidate()
	if cache.Get() != nil {
		t.Error("Get() should miss after Invalidate()")
	}
}

func TestRulesCacheTTL(t *testing.T) {
	cache := NewInMemoryRulesCache(CacheConfig{TTL: 10 * time.Millisecond})
	cache.Set([]*Rule{{ID: "a"}})

	if cache.Get() == nil {
		t.Fatal("Get() should hit before TTL")
	}

	time.Sleep(20 * time.Millisecond)

	if cache.Get() != nil {
		t.Error("Get() should miss after TTL")
	}
}

func TestValidateRule(t *testing.T) {
	testCases := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"valid", Rule{Name: "lucky_seven", Expression: `digit_sum == 7`}, false},
		{"empty tag", Rule{Name: "", Expression: `true`}, true},
		{"upper case", Rule{Name: "Prime", Expression: `true`}, true},
		{"leading digit", Rule{Name: "7up", Expression: `true`}, true},
		{"hyphen", Rule{Name: "two-words", Expression: `true`}, true},
		{"reserved", Rule{Name: "true", Expression: `true`}, true},
		{"built-in tag", Rule{Name: "prime", Expression: `number < 0.0`}, true},
		{"too long", Rule{Name: longTag() + "x", Expression: `true`}, true},
		{"blank expression", Rule{Name: "blank", Expression: "\t"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRule(&tc.rule)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateRule() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRule) {
				t.Errorf("error %v should wrap ErrInvalidRule", err)
			}
		})
	}
}

func longTag() string {
	b := make([]byte, maxTagLength)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
