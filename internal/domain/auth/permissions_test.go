package auth

import (
	"context"
	"testing"
)

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestStaticPermissions(t *testing.T) {
	perms := StaticPermissions{}
	ok, err := perms.HasPermission(context.Background(), RoleEmployee, PermHelpdeskManage)
	if err != nil || ok {
		t.Fatalf("employee must not manage helpdesk (ok=%v err=%v)", ok, err)
	}
	ok, err = perms.HasPermission(context.Background(), RoleHR, PermHelpdeskManage)
	if err != nil || !ok {
		t.Fatalf("hr must manage helpdesk (ok=%v err=%v)", ok, err)
	}
	ok, _ = perms.HasPermission(context.Background(), "contractor", PermHelpdeskRead)
	if ok {
		t.Fatal("unknown role must have no permissions")
	}
}
