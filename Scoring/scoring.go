// Package Scoring computes compliance scores from checklist answers. All
// functions are pure reductions over an already-fetched item slice; callers
// batch-fetch a visit's items once and never query per item.
package Scoring

import (
	"math"

	"Caribou/Models"
)

// VisitScore returns the whole-number compliance percentage for one visit:
// round(100 * yes / total), halves to even. A visit with no items scores 0.
func VisitScore(items []Models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	yes := 0
	for _, item := range items {
		if item.Answer {
			yes++
		}
	}
	return int(math.RoundToEven(float64(yes) / float64(len(items)) * 100))
}

// LetterGrade maps a score to A-F. Band lower bounds are inclusive.
func LetterGrade(score int) string {
	switch {
	case score >= 95:
		return "A"
	case score >= 85:
		return "B"
	case score >= 75:
		return "C"
	case score >= 65:
		return "D"
	default:
		return "F"
	}
}

// CategoryCompliance returns the one-decimal compliance percentage over the
// items whose question belongs to the given category, 0 when there are none.
// Items must have Question preloaded.
func CategoryCompliance(categoryID uint, items []Models.ChecklistItem) float64 {
	total, yes := 0, 0
	for _, item := range items {
		if item.Question.CategoryID != categoryID {
			continue
		}
		total++
		if item.Answer {
			yes++
		}
	}
	if total == 0 {
		return 0
	}
	return round1(float64(yes) / float64(total) * 100)
}

// AverageScore returns the one-decimal mean of independently computed visit
// scores. Aggregates average the per-visit scores rather than pooling all
// items, so a short visit weighs the same as a long one.
func AverageScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return round1(float64(sum) / float64(len(scores)))
}

// Percent1 is the one-decimal percentage used by multi-visit aggregates:
// round(100 * compliant / total, 1), 0 when total is 0.
func Percent1(compliant, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(compliant) / float64(total) * 100)
}

// round1 rounds to one decimal, halves to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
