package performance

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateGoal(ctx context.Context, orgID, createdBy string, in NewGoal) (string, error)
	InsertMilestones(ctx context.Context, goalID string, milestones []NewMilestone) error
	GetGoal(ctx context.Context, orgID, goalID string) (Goal, error)
	ListGoals(ctx context.Context, orgID string, filter GoalFilter) ([]Goal, error)
	UpdateGoalProgress(ctx context.Context, orgID, goalID string, result ProgressResult, updatedAt time.Time) error
	ListMilestones(ctx context.Context, goalID string) ([]Milestone, error)
	GetMilestone(ctx context.Context, orgID, milestoneID string) (Milestone, error)
	UpdateMilestone(ctx context.Context, m Milestone) error
	InsertGoalComment(ctx context.Context, goalID string, employeeID *string, body string) (GoalComment, error)
	ListGoalComments(ctx context.Context, goalID string) ([]GoalComment, error)

	ListReviewCategories(ctx context.Context, orgID string, activeOnly bool) ([]ReviewCategory, error)
	CreateReviewCategory(ctx context.Context, orgID string, c ReviewCategory) (ReviewCategory, error)
	CreateReview(ctx context.Context, orgID string, reviewerID *string, in NewReview) (string, error)
	GetReview(ctx context.Context, orgID, reviewID string) (Review, error)
	ListReviews(ctx context.Context, orgID string, filter ReviewFilter) ([]Review, error)
	ListRatings(ctx context.Context, reviewID string) ([]Rating, error)
	SaveReview(ctx context.Context, orgID, reviewID string, update ReviewUpdate, ratings []Rating) error
	UpdateEmployeeComments(ctx context.Context, orgID, reviewID, comments string) error
	UpdateReviewStatus(ctx context.Context, orgID, reviewID, status string) error

	GoalStatuses(ctx context.Context, orgID string, filter AnalyticsFilter) ([]string, error)
	CompletedRatings(ctx context.Context, orgID string, filter AnalyticsFilter) ([]float64, error)
	EmployeeDepartment(ctx context.Context, orgID, employeeID string) (string, error)
}
