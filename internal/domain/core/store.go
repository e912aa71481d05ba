package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/platform/querier"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  e.id, e.organization_id, e.first_name, e.last_name, e.email, COALESCE(e.job_title, ''),
  COALESCE(e.department_id::text, ''), COALESCE(d.name, ''), COALESCE(e.manager_id::text, ''),
  e.is_active, e.created_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.OrganizationID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.JobTitle,
		&emp.DepartmentID, &emp.DepartmentName, &emp.ManagerID, &emp.IsActive, &emp.CreatedAt)
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, orgID, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.organization_id = $1 AND e.id = $2
  `, orgID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListActiveEmployees(ctx context.Context, orgID string, filter EmployeeFilter) ([]Employee, error) {
	query := `
    SELECT ` + employeeColumns + `
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.organization_id = $1 AND e.is_active = true`
	args := []any{orgID}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Query != "" {
		query += fmt.Sprintf(" AND (e.first_name || ' ' || e.last_name) ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Query+"%")
	}
	query += " ORDER BY e.first_name, e.last_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) ListDepartments(ctx context.Context, orgID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, COUNT(e.id), d.created_at
    FROM departments d
    LEFT JOIN employees e ON e.department_id = d.id AND e.is_active = true
    WHERE d.organization_id = $1 AND d.is_active = true
    GROUP BY d.id, d.name, d.created_at
    ORDER BY d.name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Department{}
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.EmployeeCount, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) IsManagerOf(ctx context.Context, orgID, managerEmployeeID, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees
    WHERE organization_id = $1 AND id = $2 AND manager_id = $3
  `, orgID, employeeID, managerEmployeeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
