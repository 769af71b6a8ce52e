// internal/models/template.go
package models

type TemplateMapping struct {
	SecondaryThemes []string `json:"secondaryThemes,omitempty"`
	GeographyLevel  []string `json:"geographyLevel"`
	TargetGroups    []string `json:"targetGroups"`
}

// Template is read-only reference data supplied by the catalog.
type Template struct {
	ID      string          `json:"id"`
	Name    string          `json:"name,omitempty"`
	Theme   string          `json:"theme"`
	Mapping TemplateMapping `json:"mapping"`
}

type UserMatchContext struct {
	Theme        string   `json:"theme"`
	Geography    []string `json:"geography"`
	TargetGroups []string `json:"targetGroups"`
}

type MatchBreakdown struct {
	Theme       int `json:"theme"`
	Geography   int `json:"geography"`
	TargetGroup int `json:"targetGroup"`
}

type MatchResult struct {
	TemplateID  string         `json:"templateId"`
	MatchScore  int            `json:"matchScore"`
	Breakdown   MatchBreakdown `json:"breakdown"`
	Explanation []string       `json:"explanation"`
}
