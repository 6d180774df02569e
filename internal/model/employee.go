package model

import "time"

// Pagination bounds for employee listings.
const (
	DefaultSkip  = 0
	DefaultLimit = 10
	MaxLimit     = 100
)

// Employee mirrors the `employees` table. Employee records are independent
// of user accounts; the email column carries its own uniqueness constraint.
type Employee struct {
	ID         uint64    // employees.id
	Name       string    // employees.name
	Email      string    // employees.email
	Position   string    // employees.position
	Department string    // employees.department
	Salary     float64   // employees.salary
	IsActive   bool      // employees.is_active
	CreatedAt  time.Time // employees.created_at
	UpdatedAt  time.Time // employees.updated_at
}

// DepartmentStats aggregates employees of a single department.
type DepartmentStats struct {
	Count     int     `json:"count"`
	AvgSalary float64 `json:"avg_salary"`
}

// EmployeeStats is the aggregate view returned by the stats endpoint.
type EmployeeStats struct {
	TotalEmployees    int                        `json:"total_employees"`
	ActiveEmployees   int                        `json:"active_employees"`
	InactiveEmployees int                        `json:"inactive_employees"`
	AverageSalary     float64                    `json:"average_salary"`
	TotalSalary       float64                    `json:"total_salary"`
	Departments       map[string]DepartmentStats `json:"departments"`
}
