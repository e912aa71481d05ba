package performance

import "errors"

var (
	ErrGoalNotFound           = errors.New("goal not found")
	ErrMilestoneNotFound      = errors.New("milestone not found")
	ErrReviewNotFound         = errors.New("review not found")
	ErrCategoryExists         = errors.New("review category already exists")
	ErrEmployeeProfileMissing = errors.New("employee profile not found")
	ErrForbidden              = errors.New("not allowed to access performance record")
	ErrReviewNotEditable      = errors.New("review is not editable")
	ErrCannotRespond          = errors.New("review is not open for employee response")
	ErrReviewNotCompleted     = errors.New("only completed reviews can be approved")
	ErrInvalidReviewStatus    = errors.New("invalid review status")
	ErrInvalidReviewType      = errors.New("invalid review type")
	ErrInvalidRating          = errors.New("rating must be between 0 and 5")
	ErrInvalidPeriod          = errors.New("review period end is before start")
	ErrInvalidWeight          = errors.New("category weight must not be negative")
	ErrInvalidPriority        = errors.New("invalid goal priority")
	ErrTitleRequired          = errors.New("title is required")
	ErrEmptyComment           = errors.New("comment text is required")
	ErrMilestonesFailed       = errors.New("goal created but milestones could not be saved")
)
