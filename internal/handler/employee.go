package handler // employee CRUD handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hbagde424/employee-management/internal/model"
	"github.com/hbagde424/employee-management/internal/repository"
)

// EmployeeHandler bundles dependencies for the employee CRUD endpoints.
type EmployeeHandler struct {
	Employees *repository.EmployeeRepo
}

func NewEmployeeHandler(e *repository.EmployeeRepo) *EmployeeHandler {
	return &EmployeeHandler{Employees: e}
}

type employeeReq struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	Salary     float64 `json:"salary"`
}

// employeeUpdateReq uses pointers so that omitted fields are left unchanged.
type employeeUpdateReq struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email"`
	Position   *string  `json:"position"`
	Department *string  `json:"department"`
	Salary     *float64 `json:"salary"`
	IsActive   *bool    `json:"is_active"`
}

type employeeView struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Position   string    `json:"position"`
	Department string    `json:"department"`
	Salary     float64   `json:"salary"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type employeeListResp struct {
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
	Items []employeeView `json:"items"`
}

func toEmployeeView(e *model.Employee) employeeView {
	return employeeView{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
		Salary:     e.Salary,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toEmployeeViews(list []*model.Employee) []employeeView {
	out := make([]employeeView, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeView(e))
	}
	return out
}

// pagination parses skip/limit query parameters with the documented
// defaults and caps.
func pagination(c echo.Context) (int, int) {
	skip := model.DefaultSkip
	limit := model.DefaultLimit
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= model.MaxLimit {
			limit = n
		}
	}
	return skip, limit
}

// Create adds a new employee record.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Position = strings.TrimSpace(req.Position)
	req.Department = strings.TrimSpace(req.Department)
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-100 characters"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if req.Position == "" || req.Department == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "position/department required"})
	}
	if req.Salary <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "salary must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e := &model.Employee{
		Name:       req.Name,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
		Salary:     req.Salary,
	}
	if err := h.Employees.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create employee failed"})
	}
	return c.JSON(http.StatusCreated, toEmployeeView(e))
}

// List returns a page of all employees.
func (h *EmployeeHandler) List(c echo.Context) error {
	skip, limit := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Employees.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list employees failed"})
	}
	total, err := h.Employees.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count employees failed"})
	}
	return c.JSON(http.StatusOK, employeeListResp{
		Total: total, Skip: skip, Limit: limit, Items: toEmployeeViews(items),
	})
}

// Get returns a single employee by id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load employee failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeView(e))
}

// Update applies a partial update to an employee record.
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	var req employeeUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load employee failed"})
	}

	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		// Reject an email that is already taken by a different employee;
		// the unique constraint backstops the race.
		if email != e.Email {
			if _, err := h.Employees.GetByEmail(ctx, email); err == nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
			} else if !errors.Is(err, repository.ErrEmployeeNotFound) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
		}
		e.Email = email
	}
	if req.Position != nil {
		e.Position = strings.TrimSpace(*req.Position)
	}
	if req.Department != nil {
		e.Department = strings.TrimSpace(*req.Department)
	}
	if req.Salary != nil {
		if *req.Salary <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "salary must be positive"})
		}
		e.Salary = *req.Salary
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}

	if err := h.Employees.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update employee failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeView(e))
}

// Delete removes an employee record.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Employees.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete employee failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ByDepartment returns a page of employees in the given department. An
// empty department is 404 rather than an empty page.
func (h *EmployeeHandler) ByDepartment(c echo.Context) error {
	department := c.Param("department")
	skip, limit := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Employees.ListByDepartment(ctx, department, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list employees failed"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": repository.ErrDepartmentNotFound.Error()})
	}
	total, err := h.Employees.CountByDepartment(ctx, department)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count employees failed"})
	}
	return c.JSON(http.StatusOK, employeeListResp{
		Total: total, Skip: skip, Limit: limit, Items: toEmployeeViews(items),
	})
}

// Active returns a page of active employees.
func (h *EmployeeHandler) Active(c echo.Context) error {
	skip, limit := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Employees.ListActive(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list employees failed"})
	}
	total, err := h.Employees.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count employees failed"})
	}
	return c.JSON(http.StatusOK, employeeListResp{
		Total: total, Skip: skip, Limit: limit, Items: toEmployeeViews(items),
	})
}
