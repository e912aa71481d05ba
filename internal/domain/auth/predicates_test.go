package auth

import "testing"

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
		{RoleHR, true},
		{RoleManager, false},
		{RoleEmployee, false},
		{"", false},
	}
	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			if got := IsAdmin(tc.role); got != tc.want {
				t.Fatalf("IsAdmin(%q) = %v, want %v", tc.role, got, tc.want)
			}
		})
	}
}

func TestIsReviewer(t *testing.T) {
	reviewer := Session{EmployeeID: "e-1", Role: RoleManager}
	if !IsReviewer(reviewer, "e-1") {
		t.Fatal("expected assigned reviewer to match")
	}
	if IsReviewer(reviewer, "e-2") {
		t.Fatal("did not expect other reviewer to match")
	}
	if !IsReviewer(Session{Role: RoleSuperAdmin}, "e-2") {
		t.Fatal("expected super admin override")
	}
	if IsReviewer(Session{Role: RoleHR}, "e-2") {
		t.Fatal("hr is not a reviewer override")
	}
	if IsReviewer(Session{Role: RoleEmployee}, "") {
		t.Fatal("empty ids must not match")
	}
}

func TestIsEditable(t *testing.T) {
	tests := []struct {
		name       string
		isReviewer bool
		status     string
		want       bool
	}{
		{"reviewer draft", true, "Draft", true},
		{"reviewer in progress", true, "In Progress", true},
		{"reviewer completed", true, "Completed", false},
		{"reviewer approved", true, "Approved", false},
		{"non reviewer draft", false, "Draft", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEditable(tc.isReviewer, tc.status); got != tc.want {
				t.Fatalf("IsEditable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanRespond(t *testing.T) {
	if !CanRespond(true, "Completed") {
		t.Fatal("employee should respond to completed review")
	}
	if CanRespond(true, "Approved") {
		t.Fatal("approved review is closed for responses")
	}
	if CanRespond(false, "Completed") {
		t.Fatal("non employee cannot respond")
	}
}
