package performance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/requestctx"
)

type Notifier interface {
	Create(ctx context.Context, n notifications.Notification) error
}

// ManagerChecker answers reporting-line questions for goal access.
type ManagerChecker interface {
	IsManagerOf(ctx context.Context, orgID, managerEmployeeID, employeeID string) (bool, error)
}

type Service struct {
	store    StoreAPI
	notifier Notifier
	managers ManagerChecker
	now      func() time.Time
}

func NewService(store StoreAPI, notifier Notifier, managers ManagerChecker) *Service {
	return &Service{store: store, notifier: notifier, managers: managers, now: time.Now}
}

// CreateGoal inserts the goal and then its milestones. A milestone failure
// leaves the goal in place and is reported as ErrMilestonesFailed.
func (s *Service) CreateGoal(ctx context.Context, session auth.Session, in NewGoal) (Goal, error) {
	if session.EmployeeID == "" {
		return Goal{}, ErrEmployeeProfileMissing
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Goal{}, ErrTitleRequired
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return Goal{}, ErrInvalidPriority
	}
	if in.Weight != nil && *in.Weight == 0 {
		in.Weight = nil
	}
	if in.EmployeeID == "" {
		in.EmployeeID = session.EmployeeID
	}
	if err := s.ensureCanManage(ctx, session, in.EmployeeID); err != nil {
		return Goal{}, err
	}
	if in.DepartmentID == "" {
		departmentID, err := s.store.EmployeeDepartment(ctx, session.OrganizationID, in.EmployeeID)
		if err != nil {
			return Goal{}, err
		}
		in.DepartmentID = departmentID
	}

	goalID, err := s.store.CreateGoal(ctx, session.OrganizationID, session.EmployeeID, in)
	if err != nil {
		return Goal{}, fmt.Errorf("create goal: %w", err)
	}

	milestones := make([]NewMilestone, 0, len(in.Milestones))
	for _, m := range in.Milestones {
		m.Title = strings.TrimSpace(m.Title)
		if m.Title != "" {
			milestones = append(milestones, m)
		}
	}
	if err := s.store.InsertMilestones(ctx, goalID, milestones); err != nil {
		requestctx.Logger(ctx).Error("goal milestones insert failed", "goalId", goalID, "err", err)
		return Goal{ID: goalID}, fmt.Errorf("%w: %v", ErrMilestonesFailed, err)
	}

	if in.EmployeeID != session.EmployeeID {
		s.notify(ctx, notifications.Notification{
			OrganizationID: session.OrganizationID,
			EmployeeID:     in.EmployeeID,
			Title:          notifications.TitleGoalAssigned,
			Message:        fmt.Sprintf("A new goal has been assigned to you: %s", in.Title),
			Type:           notifications.TypeInfo,
			RelatedID:      goalID,
		})
	}
	return s.GetGoal(ctx, session, goalID)
}

func (s *Service) ListGoals(ctx context.Context, session auth.Session, filter GoalFilter) ([]Goal, error) {
	if !session.IsAdmin() {
		if session.EmployeeID == "" {
			return nil, ErrEmployeeProfileMissing
		}
		filter.Participant = session.EmployeeID
	}
	return s.store.ListGoals(ctx, session.OrganizationID, filter)
}

// GetGoal loads a goal with its milestones and comments.
func (s *Service) GetGoal(ctx context.Context, session auth.Session, goalID string) (Goal, error) {
	goal, err := s.loadGoal(ctx, session, goalID)
	if err != nil {
		return Goal{}, err
	}
	if goal.Milestones, err = s.store.ListMilestones(ctx, goal.ID); err != nil {
		return Goal{}, err
	}
	if goal.Comments, err = s.store.ListGoalComments(ctx, goal.ID); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

// UpdateGoalProgress applies the progress rules and persists progress,
// status and completion date together.
func (s *Service) UpdateGoalProgress(ctx context.Context, session auth.Session, goalID string, progress int) (Goal, error) {
	goal, err := s.loadGoal(ctx, session, goalID)
	if err != nil {
		return Goal{}, err
	}
	now := s.now()
	result := ApplyProgress(goal.Status, progress, now)
	if err := s.store.UpdateGoalProgress(ctx, session.OrganizationID, goalID, result, now); err != nil {
		return Goal{}, err
	}
	goal.Progress = result.Progress
	goal.Status = result.Status
	goal.CompletionDate = result.CompletionDate
	goal.UpdatedAt = now
	return goal, nil
}

func (s *Service) ToggleMilestone(ctx context.Context, session auth.Session, milestoneID string) (Milestone, error) {
	m, err := s.store.GetMilestone(ctx, session.OrganizationID, milestoneID)
	if err != nil {
		return Milestone{}, err
	}
	if _, err := s.loadGoal(ctx, session, m.GoalID); err != nil {
		return Milestone{}, err
	}
	toggled := ToggleMilestone(m, s.now())
	if err := s.store.UpdateMilestone(ctx, toggled); err != nil {
		return Milestone{}, err
	}
	return toggled, nil
}

// AddGoalComment allows admins without an employee profile; the author is
// then stored as null.
func (s *Service) AddGoalComment(ctx context.Context, session auth.Session, goalID, body string) (GoalComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return GoalComment{}, ErrEmptyComment
	}
	if _, err := s.loadGoal(ctx, session, goalID); err != nil {
		return GoalComment{}, err
	}
	var author *string
	if session.EmployeeID != "" {
		id := session.EmployeeID
		author = &id
	}
	return s.store.InsertGoalComment(ctx, goalID, author, body)
}

func (s *Service) Analytics(ctx context.Context, session auth.Session, filter AnalyticsFilter) (Analytics, error) {
	if !session.IsAdmin() {
		if session.EmployeeID == "" {
			return Analytics{}, ErrEmployeeProfileMissing
		}
		filter.EmployeeID = session.EmployeeID
	}
	statuses, err := s.store.GoalStatuses(ctx, session.OrganizationID, filter)
	if err != nil {
		return Analytics{}, err
	}
	ratings, err := s.store.CompletedRatings(ctx, session.OrganizationID, filter)
	if err != nil {
		return Analytics{}, err
	}
	return BuildAnalytics(statuses, ratings), nil
}

func (s *Service) loadGoal(ctx context.Context, session auth.Session, goalID string) (Goal, error) {
	goal, err := s.store.GetGoal(ctx, session.OrganizationID, goalID)
	if err != nil {
		return Goal{}, err
	}
	if session.IsAdmin() || goal.EmployeeID == session.EmployeeID || (goal.CreatedBy != "" && goal.CreatedBy == session.EmployeeID) {
		return goal, nil
	}
	if err := s.ensureCanManage(ctx, session, goal.EmployeeID); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

// ensureCanManage allows admins, the employee themself and their manager.
func (s *Service) ensureCanManage(ctx context.Context, session auth.Session, employeeID string) error {
	if session.IsAdmin() || employeeID == session.EmployeeID {
		return nil
	}
	if s.managers == nil {
		return ErrForbidden
	}
	ok, err := s.managers.IsManagerOf(ctx, session.OrganizationID, session.EmployeeID, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *Service) notify(ctx context.Context, n notifications.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Create(ctx, n); err != nil {
		requestctx.Logger(ctx).Warn("performance notification failed", "employeeId", n.EmployeeID, "relatedId", n.RelatedID, "err", err)
	}
}
