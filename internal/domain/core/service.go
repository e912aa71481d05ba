package core

import (
	"context"
	"errors"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, orgID, employeeID string) (Employee, error)
	ListActiveEmployees(ctx context.Context, orgID string, filter EmployeeFilter) ([]Employee, error)
	ListDepartments(ctx context.Context, orgID string) ([]Department, error)
	IsManagerOf(ctx context.Context, orgID, managerEmployeeID, employeeID string) (bool, error)
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) GetEmployee(ctx context.Context, orgID, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, orgID, employeeID)
}

// EmployeeName resolves a display name; unknown ids yield "".
func (s *Service) EmployeeName(ctx context.Context, orgID, employeeID string) (string, error) {
	if employeeID == "" {
		return "", nil
	}
	emp, err := s.store.GetEmployee(ctx, orgID, employeeID)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return "", nil
		}
		return "", err
	}
	return emp.FullName(), nil
}

func (s *Service) ListActiveEmployees(ctx context.Context, orgID string, filter EmployeeFilter) ([]Employee, error) {
	return s.store.ListActiveEmployees(ctx, orgID, filter)
}

func (s *Service) ListDepartments(ctx context.Context, orgID string) ([]Department, error) {
	return s.store.ListDepartments(ctx, orgID)
}

func (s *Service) IsManagerOf(ctx context.Context, orgID, managerEmployeeID, employeeID string) (bool, error) {
	if managerEmployeeID == "" || employeeID == "" {
		return false, nil
	}
	return s.store.IsManagerOf(ctx, orgID, managerEmployeeID, employeeID)
}
