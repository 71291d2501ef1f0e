package nav_test

import (
	"testing"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/nav"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	_ "github.com/aurora-hris/aurora-hris/testing"
)

func catalog() []rbac.Module {
	return []rbac.Module{
		{Slug: "a", Name: "A", Order: 2, IsActive: true},
		{Slug: "b", Name: "B", Order: 1, IsActive: true},
		{Slug: "c", Name: "C", Order: 1, IsActive: true},
	}
}

func slugs(entries []nav.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

func TestComposeStableSort(t *testing.T) {
	snap := authz.NewSnapshot(authz.Actor{ID: 1}, "t", []string{"Staff"}, nil, []string{"a", "b", "c"})
	got := slugs(nav.Compose(catalog(), snap))
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestComposeFiltersByAccess(t *testing.T) {
	snap := authz.NewSnapshot(authz.Actor{ID: 1}, "t", []string{"Staff"}, nil, []string{"c"})
	got := slugs(nav.Compose(catalog(), snap))
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("expected only c, got %v", got)
	}
}

func TestComposeBypassShowsEverything(t *testing.T) {
	snap := authz.NewSnapshot(authz.Actor{ID: 1}, "t", []string{"Super Admin"}, nil, nil)
	got := slugs(nav.Compose(catalog(), snap))
	if len(got) != 3 {
		t.Fatalf("expected full catalog under bypass, got %v", got)
	}
}

func TestComposeNilSnapshot(t *testing.T) {
	if got := nav.Compose(catalog(), nil); len(got) != 0 {
		t.Fatalf("nil snapshot must see no modules, got %v", got)
	}
}

func TestComposeAttachesSubItems(t *testing.T) {
	mods := []rbac.Module{{Slug: "employee-management", Name: "Employee Management", Order: 1, IsActive: true}}
	snap := authz.NewSnapshot(authz.Actor{ID: 1}, "t", []string{"Staff"}, nil, []string{"employee-management"})
	entries := nav.Compose(mods, snap)
	if len(entries) != 1 || len(entries[0].SubItems) == 0 {
		t.Fatalf("expected sub-items for employee-management")
	}
	mods[0].Slug = "unknown-module"
	snap = authz.NewSnapshot(authz.Actor{ID: 1}, "t", []string{"Staff"}, nil, []string{"unknown-module"})
	entries = nav.Compose(mods, snap)
	if len(entries) != 1 || entries[0].SubItems != nil {
		t.Fatalf("modules without a taxonomy entry get no sub-items")
	}
}
