// internal/workers/quest/match-templates/models.go
package matchtemplates

import "quest-workers/internal/models"

type Input struct {
	UserContext *models.UserMatchContext `json:"userContext"`
	Templates   []models.Template        `json:"templates"`
	Limit       int                      `json:"limit"`
}

// Output.CandidateCount tells "no templates" (0) apart from "nothing fits"
// (>0 with all-zero scores).
type Output struct {
	Matches        []models.MatchResult `json:"matches"`
	CandidateCount int                  `json:"candidateCount"`
	BestTemplateID string               `json:"bestTemplateId,omitempty"`
}

// inputSchema only guards shapes; process variables beyond these are allowed.
const inputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "userContext": {
      "type": ["object", "null"],
      "properties": {
        "theme": {"type": "string"},
        "geography": {"type": ["array", "null"], "items": {"type": "string"}},
        "targetGroups": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    },
    "templates": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "theme": {"type": "string"},
          "mapping": {
            "type": "object",
            "properties": {
              "secondaryThemes": {"type": ["array", "null"], "items": {"type": "string"}},
              "geographyLevel": {"type": ["array", "null"], "items": {"type": "string"}},
              "targetGroups": {"type": ["array", "null"], "items": {"type": "string"}}
            }
          }
        }
      }
    },
    "limit": {"type": ["integer", "null"], "minimum": 0}
  }
}`
