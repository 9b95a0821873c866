package auth

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleViewer, PermReadingRead, true},
		{RoleViewer, PermInventoryRead, true},
		{RoleViewer, PermReadingWrite, false},
		{RoleSensor, PermReadingWrite, true},
		{RoleSensor, PermSystemAdmin, false},
		{RoleAdmin, PermSystemAdmin, true},
		{Role("unknown"), PermReadingRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			if got := HasPermission(tt.role, tt.perm); got != tt.want {
				t.Errorf("HasPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermissionsForRole(t *testing.T) {
	perms := PermissionsForRole(RoleAdmin)
	if len(perms) != 4 {
		t.Fatalf("admin has %d permissions, want 4", len(perms))
	}
	perms[0] = "mutated"
	if PermissionsForRole(RoleAdmin)[0] == "mutated" {
		t.Error("PermissionsForRole returned shared slice")
	}
	if PermissionsForRole(Role("unknown")) != nil {
		t.Error("unknown role should have nil permissions")
	}
}
