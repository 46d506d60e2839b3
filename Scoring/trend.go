package Scoring

// Trend direction values.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Trend classifies an ordered-by-date sequence of visit scores (callers
// restrict it to the last 30 days). The mean of the last 7 scores is compared
// against the mean of the earlier ones; a gap above 5 points in either
// direction flips the trend. Fewer than 2 points is always stable.
func Trend(scores []int) string {
	if len(scores) < 2 {
		return TrendStable
	}

	recent := scores
	older := scores
	if len(scores) > 7 {
		recent = scores[len(scores)-7:]
		older = scores[:len(scores)-7]
	}

	recentAvg := mean(recent)
	olderAvg := mean(older)

	switch {
	case recentAvg > olderAvg+5:
		return TrendImproving
	case recentAvg < olderAvg-5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(scores []int) float64 {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
