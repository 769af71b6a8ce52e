// internal/matching/matcher.go
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"quest-workers/internal/models"
)

// Dimension weights. They sum to 1.0.
const (
	ThemeWeight       = 0.4
	GeographyWeight   = 0.3
	TargetGroupWeight = 0.3
)

const (
	scoreFull      = 100
	scoreSecondary = 50
)

// Matcher ranks templates against a user's project context. It holds no
// state and is safe for concurrent use.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match scores every template and returns the results sorted by matchScore,
// highest first. Equal scores keep their input order.
func (m *Matcher) Match(user *models.UserMatchContext, templates []models.Template) []models.MatchResult {
	if user == nil || len(templates) == 0 {
		return []models.MatchResult{}
	}

	results := make([]models.MatchResult, 0, len(templates))
	for i := range templates {
		results = append(results, m.evaluateTemplate(user, &templates[i]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return results
}

func (m *Matcher) evaluateTemplate(user *models.UserMatchContext, tpl *models.Template) models.MatchResult {
	themeScore, themeLine := scoreTheme(user.Theme, tpl)

	geoScore, geoLines := scoreCoverage("geography", tpl.Mapping.GeographyLevel, user.Geography, identity)
	targetScore, targetLines := scoreCoverage("target group", tpl.Mapping.TargetGroups, user.TargetGroups, primaryTag)

	explanation := make([]string, 0, 1+len(geoLines)+len(targetLines))
	explanation = append(explanation, themeLine)
	explanation = append(explanation, geoLines...)
	explanation = append(explanation, targetLines...)

	total := float64(themeScore)*ThemeWeight +
		float64(geoScore)*GeographyWeight +
		float64(targetScore)*TargetGroupWeight

	return models.MatchResult{
		TemplateID: tpl.ID,
		MatchScore: int(math.Round(total)),
		Breakdown: models.MatchBreakdown{
			Theme:       themeScore,
			Geography:   geoScore,
			TargetGroup: targetScore,
		},
		Explanation: explanation,
	}
}

func scoreTheme(theme string, tpl *models.Template) (int, string) {
	if theme == "" {
		return 0, fmt.Sprintf("❌ Theme mismatch: no theme given vs template %s", displayValue(tpl.Theme))
	}
	if theme == tpl.Theme {
		return scoreFull, fmt.Sprintf("✅ Theme match: %s", theme)
	}
	for _, secondary := range tpl.Mapping.SecondaryThemes {
		if secondary == theme {
			return scoreSecondary, fmt.Sprintf("⚠️ Secondary theme match: %s (primary: %s)", theme, displayValue(tpl.Theme))
		}
	}
	return 0, fmt.Sprintf("❌ Theme mismatch: user %s vs template %s", theme, displayValue(tpl.Theme))
}

// scoreCoverage measures how much of the template's required tag set the
// user covers. An empty requirement scores 0.
func scoreCoverage(dimension string, required, offered []string, normalize func(string) string) (int, []string) {
	required = dedupe(required, identity)
	if len(required) == 0 {
		return 0, []string{fmt.Sprintf("ℹ️ No %s constraint specified", dimension)}
	}

	have := make(map[string]struct{}, len(offered))
	found := dedupe(offered, normalize)
	for _, tag := range found {
		have[tag] = struct{}{}
	}

	var matched, missing []string
	for _, tag := range required {
		if _, ok := have[tag]; ok {
			matched = append(matched, tag)
		} else {
			missing = append(missing, tag)
		}
	}

	score := int(math.Round(float64(len(matched)) / float64(len(required)) * 100))
	title := capitalize(dimension)

	switch {
	case len(missing) == 0:
		return score, []string{fmt.Sprintf("✅ %s match: %s", title, join(matched))}
	case len(matched) > 0:
		return score, []string{
			fmt.Sprintf("⚠️ Partial %s match: %s", dimension, join(matched)),
			fmt.Sprintf("   Missing: %s", join(missing)),
		}
	default:
		return score, []string{fmt.Sprintf("❌ No %s match: expected %s, found %s", dimension, join(required), join(found))}
	}
}

// Top returns the first n results, or all of them when n is not positive.
func Top(results []models.MatchResult, n int) []models.MatchResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

func identity(s string) string { return s }

// primaryTag reduces a compound tag like "WOMEN/MOTHERS" to "WOMEN".
func primaryTag(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

func dedupe(tags []string, normalize func(string) string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = normalize(tag)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func join(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}

func displayValue(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
