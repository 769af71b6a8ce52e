// internal/models/answer.go
package models

// AnswerContext maps a semantic field name (problemStatement, stakeholders, ...)
// to either a trimmed string or a list of strings. Values decoded from JSON
// arrive as []interface{}; values built in Go usually arrive as []string.
type AnswerContext map[string]interface{}

// LevelID identifies one LFA level of the quest.
type LevelID string

const (
	LevelContext   LevelID = "context"
	LevelStrategy  LevelID = "strategy"
	LevelOperation LevelID = "operation"
	LevelMeasure   LevelID = "measure"
	LevelLogic     LevelID = "logic"
)

type RuleDetail struct {
	RuleID  string `json:"ruleId"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

type LevelScore struct {
	Score   int          `json:"score"`
	Details []RuleDetail `json:"details"`
}

// ScoreResult is recomputed on every evaluation and never persisted here.
type ScoreResult struct {
	OverallScore int                    `json:"overallScore"`
	Breakdown    map[LevelID]LevelScore `json:"breakdown"`
}
