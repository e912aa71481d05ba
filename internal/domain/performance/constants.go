package performance

const (
	GoalNotStarted = "not_started"
	GoalInProgress = "in_progress"
	GoalCompleted  = "completed"
)

const (
	ReviewDraft      = "Draft"
	ReviewInProgress = "In Progress"
	ReviewCompleted  = "Completed"
	ReviewApproved   = "Approved"
)

const (
	ReviewTypeAnnual    = "Annual"
	ReviewTypeMidYear   = "Mid-Year"
	ReviewTypeQuarterly = "Quarterly"
	ReviewTypeProbation = "Probation"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

const (
	MinRating = 0
	MaxRating = 5
)

var ReviewTypes = []string{ReviewTypeAnnual, ReviewTypeMidYear, ReviewTypeQuarterly, ReviewTypeProbation}

const (
	BucketExcellent = "Excellent (4.5-5)"
	BucketGood      = "Good (3.5-4.49)"
	BucketAverage   = "Average (2.5-3.49)"
	BucketNeedsWork = "Needs Imp. (<2.5)"
)
