// internal/scoring/rules.go
package scoring

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"quest-workers/internal/models"
)

// DefaultWeight applies to rules declared without a weight.
const DefaultWeight = 1.0

var (
	ErrEmptyRuleID     = errors.New("rule id is required")
	ErrDuplicateRuleID = errors.New("duplicate rule id")
	ErrNilCheck        = errors.New("rule check is required")
	ErrNegativeWeight  = errors.New("rule weight must not be negative")
)

// Predicate is a pure check over the answer context. It must return false,
// never panic, when it cannot decide.
type Predicate func(answers models.AnswerContext) bool

type Rule struct {
	ID      string
	Check   Predicate
	Weight  float64
	Message string
}

// Level is an ordered group of rules. Order matters for display only.
type Level struct {
	ID    models.LevelID
	Label string
	Rules []Rule
}

// Registry is immutable once built.
type Registry struct {
	levels []Level
}

// NewRegistry validates the levels and returns a registry holding its own copy.
func NewRegistry(levels ...Level) (*Registry, error) {
	seen := make(map[string]models.LevelID)
	out := make([]Level, 0, len(levels))

	for _, lvl := range levels {
		rules := make([]Rule, 0, len(lvl.Rules))
		for _, r := range lvl.Rules {
			if strings.TrimSpace(r.ID) == "" {
				return nil, fmt.Errorf("level %s: %w", lvl.ID, ErrEmptyRuleID)
			}
			if owner, dup := seen[r.ID]; dup {
				return nil, fmt.Errorf("%w: %s (levels %s and %s)", ErrDuplicateRuleID, r.ID, owner, lvl.ID)
			}
			if r.Check == nil {
				return nil, fmt.Errorf("rule %s: %w", r.ID, ErrNilCheck)
			}
			if r.Weight < 0 {
				return nil, fmt.Errorf("rule %s: %w", r.ID, ErrNegativeWeight)
			}
			if r.Weight == 0 {
				r.Weight = DefaultWeight
			}
			seen[r.ID] = lvl.ID
			rules = append(rules, r)
		}
		out = append(out, Level{ID: lvl.ID, Label: lvl.Label, Rules: rules})
	}

	return &Registry{levels: out}, nil
}

// MustRegistry is NewRegistry for static tables known to be valid.
func MustRegistry(levels ...Level) *Registry {
	r, err := NewRegistry(levels...)
	if err != nil {
		panic(err)
	}
	return r
}

// Levels returns a copy of the levels in registry order. Changing the
// returned rules does not affect the registry.
func (r *Registry) Levels() []Level {
	out := make([]Level, len(r.levels))
	for i, lvl := range r.levels {
		out[i] = Level{ID: lvl.ID, Label: lvl.Label, Rules: append([]Rule(nil), lvl.Rules...)}
	}
	return out
}

// Rule looks a rule up by id.
func (r *Registry) Rule(id string) (Rule, models.LevelID, bool) {
	for _, lvl := range r.levels {
		for _, rule := range lvl.Rules {
			if rule.ID == id {
				return rule, lvl.ID, true
			}
		}
	}
	return Rule{}, "", false
}

// DescriptiveText passes when field is a string whose trimmed length exceeds minLen.
func DescriptiveText(field string, minLen int) Predicate {
	return func(answers models.AnswerContext) bool {
		s, ok := answers[field].(string)
		if !ok {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(s)) > minLen
	}
}

// NonEmptyList passes when field is a list with at least one element.
func NonEmptyList(field string) Predicate {
	return func(answers models.AnswerContext) bool {
		switch v := answers[field].(type) {
		case []string:
			return len(v) > 0
		case []interface{}:
			return len(v) > 0
		default:
			return false
		}
	}
}

// DefaultRegistry is the rule table used by the quest wizard.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

var defaultRegistry = MustRegistry(
	Level{
		ID:    models.LevelContext,
		Label: "problem context",
		Rules: []Rule{
			{ID: "prob_len", Check: DescriptiveText("problemStatement", 20), Weight: 1, Message: "Problem statement is descriptive (more than 20 characters)"},
			{ID: "stake_exist", Check: NonEmptyList("stakeholders"), Weight: 1, Message: "At least one stakeholder is identified"},
		},
	},
	Level{
		ID:    models.LevelStrategy,
		Label: "strategy",
		Rules: []Rule{
			{ID: "impact_len", Check: DescriptiveText("impact", 10), Weight: 1, Message: "Long-term impact is described (more than 10 characters)"},
			{ID: "outcome_len", Check: DescriptiveText("outcome", 5), Weight: 1, Message: "Outcome is stated (more than 5 characters)"},
		},
	},
	Level{
		ID:    models.LevelOperation,
		Label: "operations",
		Rules: []Rule{
			{ID: "act_exist", Check: NonEmptyList("activities"), Weight: 1, Message: "At least one activity is planned"},
		},
	},
	Level{
		ID:    models.LevelMeasure,
		Label: "measurement",
		Rules: []Rule{
			{ID: "ind_exist", Check: NonEmptyList("indicators"), Weight: 1, Message: "At least one indicator is defined"},
		},
	},
	Level{
		ID:    models.LevelLogic,
		Label: "logic and risk",
		Rules: []Rule{
			{ID: "assump_exist", Check: NonEmptyList("assumptions"), Weight: 1, Message: "At least one assumption is recorded"},
		},
	},
)
