package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/uuid"

	"github.com/liamcoop/numclass/internal/logger"
	"github.com/liamcoop/numclass/numbers"
)

// costLimit bounds the runtime cost of a single rule evaluation
const costLimit = 100000

// Engine compiles property rules to CEL programs and evaluates them against
// number facts. It implements numbers.Policy.
type Engine struct {
	env      *cel.Env
	store    RuleStore
	cache    RulesCache
	programs map[string]cel.Program // ruleID -> compiled program
	mu       sync.RWMutex
}

// NewEngine creates an engine over store and compiles its active rules
func NewEngine(store RuleStore) (*Engine, error) {
	env, err := NewFactsEnv()
	if err != nil {
		return nil, err
	}

	en := &Engine{
		env:      env,
		store:    store,
		cache:    NewInMemoryRulesCache(DefaultCacheConfig()),
		programs: make(map[string]cel.Program),
	}

	if err := en.CompileAllRules(); err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	return en, nil
}

// NewDefaultEngine creates an engine seeded with DefaultRules, followed by
// any extra rules
func NewDefaultEngine(extra ...*Rule) (*Engine, error) {
	store := NewInMemoryRuleStore()
	for _, r := range DefaultRules() {
		if err := store.Add(r); err != nil {
			return nil, err
		}
	}

	en, err := NewEngine(store)
	if err != nil {
		return nil, err
	}

	for _, r := range extra {
		if err := en.AddRule(r); err != nil {
			return nil, fmt.Errorf("failed to add rule %q: %w", r.Name, err)
		}
	}

	return en, nil
}

// CompileRule compiles a single expression and caches the program.
// Expressions must type-check to bool.
func (en *Engine) CompileRule(ruleID, expression string) error {
	ast, issues := en.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	prog, err := en.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	en.mu.Lock()
	en.programs[ruleID] = prog
	en.mu.Unlock()

	return nil
}

// CompileAllRules compiles all active rules from the store and primes the cache
func (en *Engine) CompileAllRules() error {
	rules, err := en.store.ListActive()
	if err != nil {
		return err
	}

	for _, rule := range rules {
		if err := en.CompileRule(rule.ID, rule.Expression); err != nil {
			return fmt.Errorf("failed to compile rule %s: %w", rule.ID, err)
		}
	}

	en.cache.Set(rules)

	return nil
}

// Evaluate evaluates a single rule against the facts
func (en *Engine) Evaluate(ruleID string, f numbers.Facts) (*EvaluationResult, error) {
	rule, err := en.store.Get(ruleID)
	if err != nil {
		return nil, err
	}

	result := en.eval(rule, Activation(f))
	return result, result.Error
}

// EvaluateAll evaluates every active rule in priority order.
// A failing rule is recorded in its result and does not stop the others.
func (en *Engine) EvaluateAll(f numbers.Facts) ([]*EvaluationResult, error) {
	rules, err := en.Rules()
	if err != nil {
		return nil, err
	}

	vars := Activation(f)
	results := make([]*EvaluationResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, en.eval(rule, vars))
	}

	return results, nil
}

func (en *Engine) eval(rule *Rule, vars map[string]any) *EvaluationResult {
	en.mu.RLock()
	prog, exists := en.programs[rule.ID]
	en.mu.RUnlock()

	result := &EvaluationResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
	}

	if !exists {
		result.Error = fmt.Errorf("rule %s is not compiled", rule.ID)
		return result
	}

	out, _, err := prog.Eval(vars)
	if err != nil {
		result.Error = err
		return result
	}

	if matched, ok := out.Value().(bool); ok {
		result.Matched = matched
	}

	return result
}

// Properties implements numbers.Policy. Matched rule names become tags in
// rule order; a tag matched by several rules is reported once.
func (en *Engine) Properties(f numbers.Facts) []numbers.Property {
	results, err := en.EvaluateAll(f)
	if err != nil {
		logger.Error("failed to evaluate property rules", "error", err)
		return []numbers.Property{}
	}

	props := make([]numbers.Property, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Error != nil {
			logger.Warn("property rule failed",
				"rule", r.RuleName,
				"ruleId", r.RuleID,
				"number", f.Number,
				"error", r.Error,
			)
			continue
		}
		if r.Matched && !seen[r.RuleName] {
			seen[r.RuleName] = true
			props = append(props, numbers.Property(r.RuleName))
		}
	}

	return props
}

// GetRule returns a rule by ID, active or not
func (en *Engine) GetRule(ruleID string) (*Rule, error) {
	return en.store.Get(ruleID)
}

// Rules returns the active rules in evaluation order
func (en *Engine) Rules() ([]*Rule, error) {
	rules := en.cache.Get()
	if rules != nil {
		return rules, nil
	}

	rules, err := en.store.ListActive()
	if err != nil {
		return nil, err
	}
	en.cache.Set(rules)

	return rules, nil
}

// AddRule validates, compiles and stores a rule. An empty ID is replaced
// with a generated UUID. Built-in tags are rejected with ErrReservedTag.
func (en *Engine) AddRule(r *Rule) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	if err := ValidateRule(r); err != nil {
		return err
	}

	if _, err := en.store.Get(r.ID); err == nil {
		return fmt.Errorf("%w: %s", ErrRuleExists, r.ID)
	}

	if err := en.CompileRule(r.ID, r.Expression); err != nil {
		return fmt.Errorf("rule validation failed: %w", err)
	}

	if err := en.store.Add(r); err != nil {
		en.mu.Lock()
		delete(en.programs, r.ID)
		en.mu.Unlock()
		return err
	}

	en.cache.Invalidate()

	return nil
}

// UpdateRule validates and recompiles a rule before storing it. Rules
// carrying a built-in tag cannot be changed.
func (en *Engine) UpdateRule(r *Rule) error {
	existing, err := en.store.Get(r.ID)
	if err != nil {
		return err
	}
	if IsCoreTag(existing.Name) {
		return fmt.Errorf("%w: %q", ErrReservedTag, existing.Name)
	}

	if err := ValidateRule(r); err != nil {
		return err
	}

	if err := en.CompileRule(r.ID, r.Expression); err != nil {
		return fmt.Errorf("rule validation failed: %w", err)
	}

	if err := en.store.Update(r); err != nil {
		return err
	}

	en.cache.Invalidate()

	return nil
}

// DeleteRule removes a rule and its compiled program. Rules carrying a
// built-in tag cannot be removed.
func (en *Engine) DeleteRule(ruleID string) error {
	existing, err := en.store.Get(ruleID)
	if err != nil {
		return err
	}
	if IsCoreTag(existing.Name) {
		return fmt.Errorf("%w: %q", ErrReservedTag, existing.Name)
	}

	if err := en.store.Delete(ruleID); err != nil {
		return err
	}

	en.mu.Lock()
	delete(en.programs, ruleID)
	en.mu.Unlock()

	en.cache.Invalidate()

	return nil
}
