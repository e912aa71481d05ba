package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oapi-codegen/runtime/types"

	"hrdesk/internal/platform/querier"
)

type Store struct {
	DB querier.TxBeginner
}

func NewStore(db querier.TxBeginner) *Store {
	return &Store{DB: db}
}

const goalSelect = `
  SELECT g.id, g.organization_id, g.employee_id, COALESCE(e.first_name || ' ' || e.last_name, ''),
         COALESCE(g.created_by::text, ''), COALESCE(g.department_id::text, ''), COALESCE(d.name, ''),
         g.title, g.description, g.priority, g.weight, g.start_date, g.due_date,
         g.progress_percentage, g.status, g.completion_date, g.created_at, g.updated_at
  FROM goals g
  JOIN employees e ON e.id = g.employee_id
  LEFT JOIN departments d ON d.id = g.department_id`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	var start, due *time.Time
	err := row.Scan(&g.ID, &g.OrganizationID, &g.EmployeeID, &g.EmployeeName,
		&g.CreatedBy, &g.DepartmentID, &g.DepartmentName,
		&g.Title, &g.Description, &g.Priority, &g.Weight, &start, &due,
		&g.Progress, &g.Status, &g.CompletionDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return Goal{}, err
	}
	g.StartDate = toDate(start)
	g.DueDate = toDate(due)
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, orgID, createdBy string, in NewGoal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (organization_id, employee_id, created_by, department_id, title, description, priority, weight, start_date, due_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, orgID, in.EmployeeID, nullIfEmpty(createdBy), nullIfEmpty(in.DepartmentID), in.Title, in.Description, in.Priority,
		in.Weight, fromDate(in.StartDate), fromDate(in.DueDate), GoalNotStarted).Scan(&id)
	return id, err
}

// InsertMilestones writes the batch in one round trip, ordered as given.
func (s *Store) InsertMilestones(ctx context.Context, goalID string, milestones []NewMilestone) error {
	if len(milestones) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, m := range milestones {
		batch.Queue(`
      INSERT INTO goal_milestones (goal_id, title, due_date, display_order)
      VALUES ($1,$2,$3,$4)
    `, goalID, m.Title, fromDate(m.DueDate), i)
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetGoal(ctx context.Context, orgID, goalID string) (Goal, error) {
	g, err := scanGoal(s.DB.QueryRow(ctx, goalSelect+" WHERE g.organization_id = $1 AND g.id = $2", orgID, goalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrGoalNotFound
	}
	return g, err
}

func (s *Store) ListGoals(ctx context.Context, orgID string, filter GoalFilter) ([]Goal, error) {
	query := goalSelect + " WHERE g.organization_id = $1"
	args := []any{orgID}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND g.employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND g.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND g.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Participant != "" {
		pos := len(args) + 1
		query += fmt.Sprintf(" AND (g.employee_id = $%d OR g.created_by = $%d)", pos, pos)
		args = append(args, filter.Participant)
	}
	query += " ORDER BY g.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGoalProgress(ctx context.Context, orgID, goalID string, result ProgressResult, updatedAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET progress_percentage = $1, status = $2, completion_date = $3, updated_at = $4
    WHERE organization_id = $5 AND id = $6
  `, result.Progress, result.Status, result.CompletionDate, updatedAt, orgID, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (s *Store) ListMilestones(ctx context.Context, goalID string) ([]Milestone, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, title, due_date, display_order, is_completed, completed_date
    FROM goal_milestones
    WHERE goal_id = $1
    ORDER BY display_order ASC
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMilestone(row pgx.Row) (Milestone, error) {
	var m Milestone
	var due *time.Time
	if err := row.Scan(&m.ID, &m.GoalID, &m.Title, &due, &m.DisplayOrder, &m.IsCompleted, &m.CompletedDate); err != nil {
		return Milestone{}, err
	}
	m.DueDate = toDate(due)
	return m, nil
}

// GetMilestone scopes the lookup through the owning goal's organization.
func (s *Store) GetMilestone(ctx context.Context, orgID, milestoneID string) (Milestone, error) {
	m, err := scanMilestone(s.DB.QueryRow(ctx, `
    SELECT m.id, m.goal_id, m.title, m.due_date, m.display_order, m.is_completed, m.completed_date
    FROM goal_milestones m
    JOIN goals g ON g.id = m.goal_id
    WHERE g.organization_id = $1 AND m.id = $2
  `, orgID, milestoneID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Milestone{}, ErrMilestoneNotFound
	}
	return m, err
}

func (s *Store) UpdateMilestone(ctx context.Context, m Milestone) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goal_milestones SET is_completed = $1, completed_date = $2
    WHERE id = $3
  `, m.IsCompleted, m.CompletedDate, m.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}

func (s *Store) InsertGoalComment(ctx context.Context, goalID string, employeeID *string, body string) (GoalComment, error) {
	c := GoalComment{GoalID: goalID, EmployeeID: employeeID, Body: body}
	err := s.DB.QueryRow(ctx, `
    WITH inserted AS (
      INSERT INTO goal_comments (goal_id, user_id, comment_text)
      VALUES ($1,$2,$3)
      RETURNING id, user_id, created_at
    )
    SELECT i.id, COALESCE(e.first_name || ' ' || e.last_name, ''), i.created_at
    FROM inserted i
    LEFT JOIN employees e ON e.id = i.user_id
  `, goalID, employeeID, body).Scan(&c.ID, &c.AuthorName, &c.CreatedAt)
	return c, err
}

func (s *Store) ListGoalComments(ctx context.Context, goalID string) ([]GoalComment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.id, c.goal_id, c.user_id::text, COALESCE(e.first_name || ' ' || e.last_name, ''), c.comment_text, c.created_at
    FROM goal_comments c
    LEFT JOIN employees e ON e.id = c.user_id
    WHERE c.goal_id = $1
    ORDER BY c.created_at ASC
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GoalComment{}
	for rows.Next() {
		var c GoalComment
		if err := rows.Scan(&c.ID, &c.GoalID, &c.EmployeeID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeDepartment(ctx context.Context, orgID, employeeID string) (string, error) {
	var departmentID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(department_id::text, '') FROM employees
    WHERE organization_id = $1 AND id = $2 AND is_active = true
  `, orgID, employeeID).Scan(&departmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeProfileMissing
	}
	return departmentID, err
}

func toDate(value *time.Time) *types.Date {
	if value == nil {
		return nil
	}
	return &types.Date{Time: *value}
}

func fromDate(value *types.Date) any {
	if value == nil {
		return nil
	}
	return value.Time
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
