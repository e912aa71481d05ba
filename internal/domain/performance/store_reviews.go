package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func (s *Store) ListReviewCategories(ctx context.Context, orgID string, activeOnly bool) ([]ReviewCategory, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, organization_id, name, description, weight::float8, display_order, is_active
    FROM review_categories
    WHERE organization_id = $1 AND ($2 = false OR is_active = true)
    ORDER BY display_order ASC, name ASC
  `, orgID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ReviewCategory{}
	for rows.Next() {
		var c ReviewCategory
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Description, &c.Weight, &c.DisplayOrder, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateReviewCategory(ctx context.Context, orgID string, c ReviewCategory) (ReviewCategory, error) {
	c.OrganizationID = orgID
	err := s.DB.QueryRow(ctx, `
    INSERT INTO review_categories (organization_id, name, description, weight, display_order, is_active)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, orgID, c.Name, c.Description, c.Weight, c.DisplayOrder, c.IsActive).Scan(&c.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ReviewCategory{}, ErrCategoryExists
	}
	return c, err
}

func (s *Store) CreateReview(ctx context.Context, orgID string, reviewerID *string, in NewReview) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_reviews (organization_id, employee_id, reviewer_id, review_type, review_period_start, review_period_end, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, orgID, in.EmployeeID, reviewerID, in.ReviewType, fromDate(in.PeriodStart), fromDate(in.PeriodEnd), ReviewDraft).Scan(&id)
	return id, err
}

const reviewSelect = `
  SELECT r.id, r.organization_id, r.employee_id, COALESCE(e.first_name || ' ' || e.last_name, ''),
         r.reviewer_id::text, COALESCE(rv.first_name || ' ' || rv.last_name, ''),
         r.review_type, r.review_period_start, r.review_period_end,
         r.overall_rating::float8, r.final_rating::float8,
         r.strengths, r.areas_for_improvement, r.achievements, r.goals_for_next_period,
         r.manager_comments, r.employee_comments, r.status, r.reviewed_date, r.created_at, r.updated_at
  FROM performance_reviews r
  JOIN employees e ON e.id = r.employee_id
  LEFT JOIN employees rv ON rv.id = r.reviewer_id`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	var start, end *time.Time
	err := row.Scan(&r.ID, &r.OrganizationID, &r.EmployeeID, &r.EmployeeName,
		&r.ReviewerID, &r.ReviewerName, &r.ReviewType, &start, &end,
		&r.OverallRating, &r.FinalRating,
		&r.Strengths, &r.AreasForImprovement, &r.Achievements, &r.GoalsForNextPeriod,
		&r.ManagerComments, &r.EmployeeComments, &r.Status, &r.ReviewedDate, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Review{}, err
	}
	r.PeriodStart = toDate(start)
	r.PeriodEnd = toDate(end)
	return r, nil
}

func (s *Store) GetReview(ctx context.Context, orgID, reviewID string) (Review, error) {
	r, err := scanReview(s.DB.QueryRow(ctx, reviewSelect+" WHERE r.organization_id = $1 AND r.id = $2", orgID, reviewID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrReviewNotFound
	}
	return r, err
}

func (s *Store) ListReviews(ctx context.Context, orgID string, filter ReviewFilter) ([]Review, error) {
	query := reviewSelect + " WHERE r.organization_id = $1"
	args := []any{orgID}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND r.employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Participant != "" {
		pos := len(args) + 1
		query += fmt.Sprintf(" AND (r.employee_id = $%d OR r.reviewer_id = $%d)", pos, pos)
		args = append(args, filter.Participant)
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListRatings(ctx context.Context, reviewID string) ([]Rating, error) {
	rows, err := s.DB.Query(ctx, "SELECT category_id, rating, comments FROM review_ratings WHERE review_id = $1", reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Rating{}
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.CategoryID, &r.Rating, &r.Comments); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveReview writes the review row and upserts one rating per category on
// (review_id, category_id) in a single transaction.
func (s *Store) SaveReview(ctx context.Context, orgID, reviewID string, update ReviewUpdate, ratings []Rating) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE performance_reviews
    SET status = $1, overall_rating = $2, final_rating = $3,
        strengths = $4, areas_for_improvement = $5, achievements = $6,
        goals_for_next_period = $7, manager_comments = $8, reviewed_date = $9,
        updated_at = now()
    WHERE organization_id = $10 AND id = $11
  `, update.Status, update.OverallRating, update.FinalRating,
		update.Strengths, update.AreasForImprovement, update.Achievements,
		update.GoalsForNextPeriod, update.ManagerComments, update.ReviewedDate,
		orgID, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	for _, r := range ratings {
		if _, err := tx.Exec(ctx, `
      INSERT INTO review_ratings (review_id, category_id, rating, comments)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (review_id, category_id) DO UPDATE
        SET rating = EXCLUDED.rating, comments = EXCLUDED.comments
    `, reviewID, r.CategoryID, r.Rating, r.Comments); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) UpdateEmployeeComments(ctx context.Context, orgID, reviewID, comments string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews SET employee_comments = $1, updated_at = now()
    WHERE organization_id = $2 AND id = $3
  `, comments, orgID, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *Store) UpdateReviewStatus(ctx context.Context, orgID, reviewID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews SET status = $1, updated_at = now()
    WHERE organization_id = $2 AND id = $3
  `, status, orgID, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *Store) GoalStatuses(ctx context.Context, orgID string, filter AnalyticsFilter) ([]string, error) {
	query := "SELECT status FROM goals WHERE organization_id = $1"
	args := []any{orgID}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CompletedRatings returns overall ratings of closed reviews; the department
// filter goes through the reviewed employee.
func (s *Store) CompletedRatings(ctx context.Context, orgID string, filter AnalyticsFilter) ([]float64, error) {
	query := `
    SELECT r.overall_rating::float8
    FROM performance_reviews r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.organization_id = $1 AND r.status IN ('Completed', 'Approved')`
	args := []any{orgID}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND r.employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[float64])
}
