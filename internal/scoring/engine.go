// internal/scoring/engine.go
package scoring

import (
	"math"

	"quest-workers/internal/models"
)

// Engine scores an answer context against a rule registry. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	registry *Registry
}

// PendingRule is a failing rule surfaced as a next step in the wizard.
type PendingRule struct {
	Level   models.LevelID `json:"level"`
	RuleID  string         `json:"ruleId"`
	Message string         `json:"message"`
}

func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{registry: registry}
}

// Evaluate never fails: missing or malformed answers only lower the score.
func (e *Engine) Evaluate(answers models.AnswerContext) models.ScoreResult {
	result := models.ScoreResult{
		Breakdown: make(map[models.LevelID]models.LevelScore),
	}

	levelTotal := 0
	scoredLevels := 0

	for _, lvl := range e.registry.levels {
		if len(lvl.Rules) == 0 {
			continue
		}

		var passedWeight, totalWeight float64
		details := make([]models.RuleDetail, 0, len(lvl.Rules))

		for _, rule := range lvl.Rules {
			passed := safeCheck(rule.Check, answers)
			if passed {
				passedWeight += rule.Weight
			}
			totalWeight += rule.Weight
			details = append(details, models.RuleDetail{
				RuleID:  rule.ID,
				Passed:  passed,
				Message: rule.Message,
			})
		}

		score := 0
		if totalWeight > 0 {
			score = int(math.Round(passedWeight / totalWeight * 100))
		}

		result.Breakdown[lvl.ID] = models.LevelScore{Score: score, Details: details}
		levelTotal += score
		scoredLevels++
	}

	if scoredLevels > 0 {
		result.OverallScore = int(math.Round(float64(levelTotal) / float64(scoredLevels)))
	}

	return result
}

// Pending lists failing rules in registry order.
func (e *Engine) Pending(result models.ScoreResult) []PendingRule {
	pending := []PendingRule{}
	for _, lvl := range e.registry.levels {
		ls, ok := result.Breakdown[lvl.ID]
		if !ok {
			continue
		}
		for _, d := range ls.Details {
			if !d.Passed {
				pending = append(pending, PendingRule{Level: lvl.ID, RuleID: d.RuleID, Message: d.Message})
			}
		}
	}
	return pending
}

// Registry exposes the rule table the engine was built with.
func (e *Engine) Registry() *Registry {
	return e.registry
}

func safeCheck(check Predicate, answers models.AnswerContext) (passed bool) {
	defer func() {
		if recover() != nil {
			passed = false
		}
	}()
	return check(answers)
}
