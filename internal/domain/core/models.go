package core

import "time"

// Employee is the directory view of a person; helpdesk and performance
// reference employees by id and resolve names through this package.
type Employee struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email,omitempty"`
	JobTitle       string    `json:"jobTitle"`
	DepartmentID   string    `json:"departmentId"`
	DepartmentName string    `json:"departmentName"`
	ManagerID      string    `json:"managerId"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (e Employee) FullName() string {
	return FullName(e.FirstName, e.LastName)
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type EmployeeFilter struct {
	Query        string
	DepartmentID string
}
