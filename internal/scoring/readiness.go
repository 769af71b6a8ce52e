package scoring

type Readiness string

const (
	ReadinessExcellent Readiness = "excellent"
	ReadinessHigh      Readiness = "high"
	ReadinessMedium    Readiness = "medium"
	ReadinessLow       Readiness = "low"
)

// Classify buckets an overall score for the progress header.
func Classify(overall int) Readiness {
	switch {
	case overall >= 81:
		return ReadinessExcellent
	case overall >= 61:
		return ReadinessHigh
	case overall >= 41:
		return ReadinessMedium
	default:
		return ReadinessLow
	}
}
