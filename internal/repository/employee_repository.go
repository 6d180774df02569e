// This file defines the repository for employee records and the aggregate
// statistics query. Employees are independent of user accounts; the email
// column carries its own uniqueness constraint enforced by the database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hbagde424/employee-management/internal/model"
)

// ErrEmployeeNotFound is returned when an employee cannot be found.
var ErrEmployeeNotFound = errors.New("employee not found")

// ErrDepartmentNotFound is returned when a department listing matches no rows.
var ErrDepartmentNotFound = errors.New("no employees found in this department")

type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

const employeeColumns = "id,name,email,position,department,salary,is_active,created_at,updated_at"

// Create inserts a new employee. On success the ID, CreatedAt and UpdatedAt
// fields are populated so callers receive a fully populated record. A
// duplicate email surfaces as ErrEmailExists.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO employees (name, email, position, department, salary) VALUES (?,?,?,?,?)",
		e.Name, strings.ToLower(strings.TrimSpace(e.Email)), e.Position, e.Department, e.Salary)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)

	// Follow-up SELECT to populate default columns (is_active, timestamps).
	return r.DB.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id=?", e.ID).
		Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.Salary,
			&e.IsActive, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID fetches an employee by id. Returns ErrEmployeeNotFound when no
// row matches.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (*model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id=? LIMIT 1", id).
		Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.Salary,
			&e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByEmail fetches an employee by normalized email.
func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.Salary,
			&e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns a page of employees ordered by id.
func (r *EmployeeRepo) List(ctx context.Context, skip, limit int) ([]*model.Employee, error) {
	return r.queryMany(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY id LIMIT ? OFFSET ?", limit, skip)
}

// ListByDepartment returns a page of employees in the given department.
func (r *EmployeeRepo) ListByDepartment(ctx context.Context, department string, skip, limit int) ([]*model.Employee, error) {
	return r.queryMany(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE department=? ORDER BY id LIMIT ? OFFSET ?",
		department, limit, skip)
}

// ListActive returns a page of active employees.
func (r *EmployeeRepo) ListActive(ctx context.Context, skip, limit int) ([]*model.Employee, error) {
	return r.queryMany(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE is_active=1 ORDER BY id LIMIT ? OFFSET ?",
		limit, skip)
}

func (r *EmployeeRepo) queryMany(ctx context.Context, q string, args ...any) ([]*model.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Employee
	for rows.Next() {
		e := new(model.Employee)
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department,
			&e.Salary, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of employees.
func (r *EmployeeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&n)
	return n, err
}

// CountByDepartment returns the number of employees in a department.
func (r *EmployeeRepo) CountByDepartment(ctx context.Context, department string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM employees WHERE department=?", department).Scan(&n)
	return n, err
}

// Update persists changes to an existing employee. Returns
// ErrEmployeeNotFound when the row no longer exists and ErrEmailExists on
// an email collision.
func (r *EmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE employees
		 SET name=?, email=?, position=?, department=?, salary=?, is_active=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		e.Name, strings.ToLower(strings.TrimSpace(e.Email)), e.Position, e.Department,
		e.Salary, e.IsActive, e.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// Delete removes an employee by id. Returns ErrEmployeeNotFound when no
// row was deleted.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// Stats computes the aggregate statistics view: totals, salary aggregates
// and a per-department breakdown. COALESCE keeps the aggregates at zero on
// an empty table instead of NULL.
func (r *EmployeeRepo) Stats(ctx context.Context) (model.EmployeeStats, error) {
	var s model.EmployeeStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(is_active), 0),
		        COALESCE(AVG(salary), 0),
		        COALESCE(SUM(salary), 0)
		 FROM employees`).
		Scan(&s.TotalEmployees, &s.ActiveEmployees, &s.AverageSalary, &s.TotalSalary)
	if err != nil {
		return model.EmployeeStats{}, err
	}
	s.InactiveEmployees = s.TotalEmployees - s.ActiveEmployees

	rows, err := r.DB.QueryContext(ctx,
		`SELECT department, COUNT(*), COALESCE(AVG(salary), 0)
		 FROM employees GROUP BY department`)
	if err != nil {
		return model.EmployeeStats{}, err
	}
	defer rows.Close()

	s.Departments = make(map[string]model.DepartmentStats)
	for rows.Next() {
		var dept string
		var ds model.DepartmentStats
		if err := rows.Scan(&dept, &ds.Count, &ds.AvgSalary); err != nil {
			return model.EmployeeStats{}, err
		}
		s.Departments[dept] = ds
	}
	if err := rows.Err(); err != nil {
		return model.EmployeeStats{}, err
	}
	return s, nil
}
