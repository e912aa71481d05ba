package core

import (
	"context"
	"testing"
)

type fakeStore struct {
	employees map[string]Employee
}

func (f *fakeStore) GetEmployee(_ context.Context, _, employeeID string) (Employee, error) {
	emp, ok := f.employees[employeeID]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeStore) ListActiveEmployees(_ context.Context, _ string, _ EmployeeFilter) ([]Employee, error) {
	out := []Employee{}
	for _, emp := range f.employees {
		out = append(out, emp)
	}
	return out, nil
}

func (f *fakeStore) ListDepartments(context.Context, string) ([]Department, error) {
	return []Department{}, nil
}

func (f *fakeStore) IsManagerOf(_ context.Context, _, managerID, employeeID string) (bool, error) {
	return f.employees[employeeID].ManagerID == managerID, nil
}

func TestEmployeeName(t *testing.T) {
	svc := NewService(&fakeStore{employees: map[string]Employee{"e1": {ID: "e1", FirstName: "Grace", LastName: "Hopper"}}})
	ctx := context.Background()

	name, err := svc.EmployeeName(ctx, "o1", "e1")
	if err != nil || name != "Grace Hopper" {
		t.Fatalf("unexpected name %q err %v", name, err)
	}
	name, err = svc.EmployeeName(ctx, "o1", "missing")
	if err != nil || name != "" {
		t.Fatalf("missing employee should resolve to blank, got %q err %v", name, err)
	}
	name, err = svc.EmployeeName(ctx, "o1", "")
	if err != nil || name != "" {
		t.Fatalf("blank id should resolve to blank, got %q err %v", name, err)
	}
}

func TestIsManagerOfBlankIDs(t *testing.T) {
	svc := NewService(&fakeStore{employees: map[string]Employee{"e1": {ID: "e1"}}})
	ok, err := svc.IsManagerOf(context.Background(), "o1", "", "e1")
	if err != nil || ok {
		t.Fatalf("blank manager must never match (ok=%v err=%v)", ok, err)
	}
}
