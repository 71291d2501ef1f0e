package employees

import "time"

// Employee is a personnel record.
type Employee struct {
	ID           int64     `json:"id"`
	EmployeeNo   string    `json:"employee_no"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	DepartmentID int64     `json:"department_id"`
	Position     string    `json:"position"`
	HireDate     time.Time `json:"hire_date"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListFilters narrows employee listings.
type ListFilters struct {
	Search       string
	DepartmentID int64
	Page         int
	PerPage      int
}
