// Package nav composes the navigation menu an actor may see: the module
// catalog filtered by module access, stable-sorted by catalog weight, with
// a static sub-item taxonomy attached per module.
package nav

import (
	"sort"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// SubItem is a fixed navigation leaf under a module. The table below is a
// presentation taxonomy, not authorization data.
type SubItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Entry is one navigable module with its sub-items.
type Entry struct {
	rbac.Module
	SubItems []SubItem `json:"sub_items,omitempty"`
}

var subItems = map[string][]SubItem{
	shared.ModuleEmployeeManagement: {
		{Label: "Employees", Path: "/employees"},
		{Label: "Departments", Path: "/departments"},
	},
	shared.ModuleOrganization: {
		{Label: "Offices", Path: "/offices"},
		{Label: "Departments", Path: "/departments"},
	},
	shared.ModuleLeaveManagement: {
		{Label: "Leave Requests", Path: "/leave/requests"},
		{Label: "Leave Types", Path: "/leave/types"},
	},
	shared.ModulePayrollManagement: {
		{Label: "Components", Path: "/payroll/components"},
		{Label: "Payslips", Path: "/payroll/payslips"},
	},
	shared.ModuleRecruitment: {
		{Label: "Job Postings", Path: "/recruitment/postings"},
		{Label: "Applicants", Path: "/recruitment/applicants"},
	},
	shared.ModuleSystemAdministration: {
		{Label: "Users", Path: "/admin/users"},
		{Label: "Roles", Path: "/admin/roles"},
		{Label: "Modules", Path: "/admin/modules"},
	},
}

// Compose filters the catalog by the actor's module access (the bypass
// rule applies first, inside HasModuleAccess), then stable-sorts ascending
// by order weight so equal weights keep their catalog position.
func Compose(catalog []rbac.Module, snap *authz.Snapshot) []Entry {
	entries := make([]Entry, 0, len(catalog))
	for _, module := range catalog {
		if !snap.HasModuleAccess(module.Slug) {
			continue
		}
		entries = append(entries, Entry{Module: module, SubItems: subItems[module.Slug]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})
	return entries
}
