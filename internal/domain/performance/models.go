package performance

import (
	"time"

	"github.com/oapi-codegen/runtime/types"
)

type Goal struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organizationId"`
	EmployeeID     string        `json:"employeeId"`
	EmployeeName   string        `json:"employeeName"`
	CreatedBy      string        `json:"createdBy,omitempty"`
	DepartmentID   string        `json:"departmentId,omitempty"`
	DepartmentName string        `json:"departmentName,omitempty"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Priority       string        `json:"priority"`
	Weight         *int          `json:"weight"`
	StartDate      *types.Date   `json:"startDate,omitempty"`
	DueDate        *types.Date   `json:"dueDate,omitempty"`
	Progress       int           `json:"progressPercentage"`
	Status         string        `json:"status"`
	CompletionDate *time.Time    `json:"completionDate"`
	Milestones     []Milestone   `json:"milestones,omitempty"`
	Comments       []GoalComment `json:"comments,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type Milestone struct {
	ID            string      `json:"id"`
	GoalID        string      `json:"goalId"`
	Title         string      `json:"title"`
	DueDate       *types.Date `json:"dueDate,omitempty"`
	DisplayOrder  int         `json:"displayOrder"`
	IsCompleted   bool        `json:"isCompleted"`
	CompletedDate *time.Time  `json:"completedDate"`
}

type GoalComment struct {
	ID         string    `json:"id"`
	GoalID     string    `json:"goalId"`
	EmployeeID *string   `json:"employeeId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NewGoal struct {
	EmployeeID   string
	DepartmentID string
	Title        string
	Description  string
	Priority     string
	Weight       *int
	StartDate    *types.Date
	DueDate      *types.Date
	Milestones   []NewMilestone
}

type NewMilestone struct {
	Title   string
	DueDate *types.Date
}

type GoalFilter struct {
	EmployeeID   string
	DepartmentID string
	Status       string
	// Participant matches goals owned by or created by the employee.
	Participant string
}

type Review struct {
	ID                  string      `json:"id"`
	OrganizationID      string      `json:"organizationId"`
	EmployeeID          string      `json:"employeeId"`
	EmployeeName        string      `json:"employeeName"`
	ReviewerID          *string     `json:"reviewerId"`
	ReviewerName        string      `json:"reviewerName,omitempty"`
	ReviewType          string      `json:"reviewType"`
	PeriodStart         *types.Date `json:"reviewPeriodStart,omitempty"`
	PeriodEnd           *types.Date `json:"reviewPeriodEnd,omitempty"`
	OverallRating       float64     `json:"overallRating"`
	FinalRating         float64     `json:"finalRating"`
	Strengths           string      `json:"strengths"`
	AreasForImprovement string      `json:"areasForImprovement"`
	Achievements        string      `json:"achievements"`
	GoalsForNextPeriod  string      `json:"goalsForNextPeriod"`
	ManagerComments     string      `json:"managerComments"`
	EmployeeComments    string      `json:"employeeComments"`
	Status              string      `json:"status"`
	ReviewedDate        *time.Time  `json:"reviewedDate"`
	Ratings             []Rating    `json:"ratings,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// PeriodLabel renders the review period for listings and the PDF.
func (r Review) PeriodLabel() string {
	start, end := "", ""
	if r.PeriodStart != nil {
		start = r.PeriodStart.Format(time.DateOnly)
	}
	if r.PeriodEnd != nil {
		end = r.PeriodEnd.Format(time.DateOnly)
	}
	if start == "" && end == "" {
		return ""
	}
	return start + " to " + end
}

type ReviewCategory struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Weight         float64 `json:"weight"`
	DisplayOrder   int     `json:"displayOrder"`
	IsActive       bool    `json:"isActive"`
}

type Rating struct {
	CategoryID string `json:"categoryId"`
	Rating     int    `json:"rating"`
	Comments   string `json:"comments"`
}

type NewReview struct {
	EmployeeID  string
	ReviewType  string
	PeriodStart *types.Date
	PeriodEnd   *types.Date
}

// ReviewInput is the reviewer's form. Ratings are keyed by category id.
type ReviewInput struct {
	Strengths           string
	AreasForImprovement string
	Achievements        string
	GoalsForNextPeriod  string
	ManagerComments     string
	Ratings             map[string]Rating
}

// ReviewUpdate is the row-level write SaveReview produces.
type ReviewUpdate struct {
	Status              string
	OverallRating       float64
	FinalRating         float64
	Strengths           string
	AreasForImprovement string
	Achievements        string
	GoalsForNextPeriod  string
	ManagerComments     string
	ReviewedDate        *time.Time
}

type ReviewFilter struct {
	EmployeeID string
	Status     string
	// Participant matches reviews where the employee is reviewee or reviewer.
	Participant string
}

type AnalyticsFilter struct {
	DepartmentID string
	EmployeeID   string
}

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Analytics struct {
	GoalTotal      int            `json:"goalTotal"`
	StatusCounts   map[string]int `json:"statusCounts"`
	CompletionRate float64        `json:"completionRate"`
	ReviewTotal    int            `json:"reviewTotal"`
	AverageRating  float64        `json:"averageRating"`
	Distribution   []Bucket       `json:"distribution"`
}
