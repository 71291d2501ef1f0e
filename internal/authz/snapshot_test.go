package authz_test

import (
	"encoding/json"
	"testing"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	_ "github.com/aurora-hris/aurora-hris/testing"
)

func staffSnapshot() *authz.Snapshot {
	return authz.NewSnapshot(
		authz.Actor{ID: 7, Email: "staff@aurora.local", FirstName: "Sari", LastName: "Putri"},
		"token-7",
		[]string{"Staff"},
		[]string{"employee:read", "leave:read"},
		[]string{"leave-management"},
	)
}

func TestHasPermission(t *testing.T) {
	snap := staffSnapshot()
	if !snap.HasPermission("employee:read") {
		t.Fatalf("expected employee:read granted")
	}
	if !snap.HasPermission("  Employee:Read  ") {
		t.Fatalf("expected slug normalization before lookup")
	}
	if snap.HasPermission("employee:write") {
		t.Fatalf("expected employee:write denied")
	}
}

func TestNilSnapshotFailsClosed(t *testing.T) {
	var snap *authz.Snapshot
	if snap.HasPermission("employee:read") {
		t.Fatalf("nil snapshot must deny permissions")
	}
	if snap.HasModuleAccess("leave-management") {
		t.Fatalf("nil snapshot must deny modules")
	}
	if snap.HasAnyPermission([]string{"employee:read"}) {
		t.Fatalf("nil snapshot must deny any-checks")
	}
	if !snap.HasAllPermissions(nil) {
		t.Fatalf("all-check over empty list holds vacuously even for nil snapshot")
	}
}

func TestEmptyListAsymmetry(t *testing.T) {
	snap := staffSnapshot()
	if snap.HasAnyPermission(nil) {
		t.Fatalf("any over empty list must be false")
	}
	if !snap.HasAllPermissions(nil) {
		t.Fatalf("all over empty list must be true")
	}
}

func TestAnyAllQuantifiers(t *testing.T) {
	snap := staffSnapshot()
	if !snap.HasAnyPermission([]string{"payroll:read", "employee:read"}) {
		t.Fatalf("any must hold when one slug is granted")
	}
	if snap.HasAllPermissions([]string{"payroll:read", "employee:read"}) {
		t.Fatalf("all must fail when one slug is missing")
	}
	if !snap.HasAllPermissions([]string{"leave:read", "employee:read"}) {
		t.Fatalf("all must hold when every slug is granted")
	}
}

func TestModuleAccess(t *testing.T) {
	snap := staffSnapshot()
	if !snap.HasModuleAccess("leave-management") {
		t.Fatalf("expected leave-management accessible")
	}
	if snap.HasModuleAccess("payroll-management") {
		t.Fatalf("expected payroll-management denied")
	}
}

func TestSuperAdminBypassesModulesOnly(t *testing.T) {
	snap := authz.NewSnapshot(authz.Actor{ID: 1}, "t", []string{"Super Admin"}, nil, nil)
	if !snap.HasModuleAccess("anything-at-all") {
		t.Fatalf("super admin must access every module, even uncataloged ones")
	}
	if snap.HasPermission("employee:read") {
		t.Fatalf("bypass must never extend to permission slugs")
	}
}

func TestZeroModulesBypass(t *testing.T) {
	snap := authz.NewSnapshot(authz.Actor{ID: 2}, "t", []string{"Staff"}, []string{"employee:read"}, nil)
	if !snap.HasModuleAccess("payroll-management") {
		t.Fatalf("zero module grants must fail open on module checks")
	}
	if snap.HasPermission("payroll:read") {
		t.Fatalf("permission checks stay strict under the zero-module fallback")
	}
}

func TestHasRoleCaseInsensitive(t *testing.T) {
	snap := authz.NewSnapshot(authz.Actor{ID: 3}, "t", []string{"super admin"}, nil, []string{"m"})
	if !snap.HasRole("Super Admin") {
		t.Fatalf("role comparison must ignore case")
	}
	if !snap.BypassesModuleChecks() {
		t.Fatalf("lowercased privileged role must still bypass")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := authz.NewSnapshot(
		authz.Actor{ID: 9, Email: "a@aurora.local"},
		"bearer-9",
		[]string{"A"},
		[]string{"x:read", "x:write"},
		[]string{"m1"},
	)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored authz.Snapshot
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.AccessToken() != "bearer-9" {
		t.Fatalf("token lost in round trip")
	}
	for _, slug := range []string{"x:read", "x:write"} {
		if restored.HasPermission(slug) != original.HasPermission(slug) {
			t.Fatalf("permission %s diverged after round trip", slug)
		}
	}
	if restored.HasModuleAccess("m1") != original.HasModuleAccess("m1") {
		t.Fatalf("module access diverged after round trip")
	}
	if restored.HasAnyPermission(nil) || !restored.HasAllPermissions(nil) {
		t.Fatalf("quantifier semantics diverged after round trip")
	}
}
