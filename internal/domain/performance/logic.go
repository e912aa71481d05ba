package performance

import (
	"math"
	"slices"
	"time"
)

type ProgressResult struct {
	Progress       int
	Status         string
	CompletionDate *time.Time
}

// ClampProgress bounds a progress percentage to [0,100].
func ClampProgress(progress int) int {
	return min(max(progress, 0), 100)
}

// ApplyProgress derives goal status from a new progress value. Reaching 100
// completes the goal; any progress on a not-started goal starts it. Otherwise
// the status is kept, so a completed goal moved below 100 stays completed
// while losing its completion date.
func ApplyProgress(oldStatus string, progress int, now time.Time) ProgressResult {
	progress = ClampProgress(progress)
	switch {
	case progress == 100:
		completed := now
		return ProgressResult{Progress: progress, Status: GoalCompleted, CompletionDate: &completed}
	case oldStatus == GoalNotStarted && progress > 0:
		return ProgressResult{Progress: progress, Status: GoalInProgress}
	default:
		return ProgressResult{Progress: progress, Status: oldStatus}
	}
}

// ToggleMilestone flips completion. Goal progress is not touched.
func ToggleMilestone(m Milestone, now time.Time) Milestone {
	m.IsCompleted = !m.IsCompleted
	if m.IsCompleted {
		completed := now
		m.CompletedDate = &completed
	} else {
		m.CompletedDate = nil
	}
	return m
}

// CategoryWeight treats a zero weight as 1.
func CategoryWeight(c ReviewCategory) float64 {
	if c.Weight == 0 {
		return 1
	}
	return c.Weight
}

// AggregateRating is the weighted mean of the ratings over categories.
// Unrated categories count as 0 at full weight; no categories yields 0.
func AggregateRating(categories []ReviewCategory, ratings map[string]Rating) float64 {
	var weighted, total float64
	for _, c := range categories {
		w := CategoryWeight(c)
		weighted += float64(ratings[c.ID].Rating) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

func ValidReviewType(reviewType string) bool {
	return slices.Contains(ReviewTypes, reviewType)
}

// ValidSaveStatus lists the statuses a reviewer may save with.
func ValidSaveStatus(status string) bool {
	switch status {
	case ReviewDraft, ReviewInProgress, ReviewCompleted:
		return true
	}
	return false
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
