// internal/workers/quest/evaluate-project-score/models.go
package evaluateprojectscore

import (
	"quest-workers/internal/models"
	"quest-workers/internal/scoring"
)

type Input struct {
	ProjectID string               `json:"projectId"`
	Answers   models.AnswerContext `json:"answers"`
}

type Output struct {
	ProjectID    string                                `json:"projectId,omitempty"`
	OverallScore int                                   `json:"overallScore"`
	Breakdown    map[models.LevelID]models.LevelScore `json:"breakdown"`
	Readiness    scoring.Readiness                     `json:"readiness"`
	NextSteps    []scoring.PendingRule                 `json:"nextSteps"`
}
