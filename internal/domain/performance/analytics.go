package performance

// RatingBucket places an overall rating in its dashboard band.
func RatingBucket(rating float64) string {
	switch {
	case rating >= 4.5:
		return BucketExcellent
	case rating >= 3.5:
		return BucketGood
	case rating >= 2.5:
		return BucketAverage
	default:
		return BucketNeedsWork
	}
}

// BuildAnalytics summarizes goal statuses and review ratings. The completion
// rate is a percentage with one decimal; the average rating has two.
func BuildAnalytics(goalStatuses []string, ratings []float64) Analytics {
	out := Analytics{
		GoalTotal:    len(goalStatuses),
		StatusCounts: map[string]int{},
		ReviewTotal:  len(ratings),
		Distribution: []Bucket{
			{Label: BucketExcellent},
			{Label: BucketGood},
			{Label: BucketAverage},
			{Label: BucketNeedsWork},
		},
	}
	for _, status := range goalStatuses {
		out.StatusCounts[status]++
	}
	if out.GoalTotal > 0 {
		out.CompletionRate = round(float64(out.StatusCounts[GoalCompleted])/float64(out.GoalTotal)*100, 1)
	}

	var sum float64
	for _, rating := range ratings {
		sum += rating
		label := RatingBucket(rating)
		for i := range out.Distribution {
			if out.Distribution[i].Label == label {
				out.Distribution[i].Count++
			}
		}
	}
	if len(ratings) > 0 {
		out.AverageRating = round(sum/float64(len(ratings)), 2)
	}
	return out
}
