package shared

// Core platform permissions.
const (
	PermUsersView = "user:read"
	PermUsersEdit = "user:write"

	PermRolesView = "role:read"
	PermRolesEdit = "role:write"

	PermModulesView = "module:read"
	PermModulesEdit = "module:write"

	PermPermissionsView = "permission:read"
)

// Human-resource permissions.
const (
	PermEmployeesView = "employee:read"
	PermEmployeesEdit = "employee:write"

	PermDepartmentsView = "department:read"
	PermDepartmentsEdit = "department:write"
)

// Module slugs registered in the catalog.
const (
	ModuleEmployeeManagement   = "employee-management"
	ModuleOrganization         = "organization-management"
	ModuleLeaveManagement      = "leave-management"
	ModulePayrollManagement    = "payroll-management"
	ModuleRecruitment          = "recruitment"
	ModuleSystemAdministration = "system-administration"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermRolesEdit,
		PermModulesView,
		PermModulesEdit,
		PermPermissionsView,
	}
}

// HRScopes lists all permissions related to the HR modules.
func HRScopes() []string {
	return []string{
		PermEmployeesView,
		PermEmployeesEdit,
		PermDepartmentsView,
		PermDepartmentsEdit,
	}
}
