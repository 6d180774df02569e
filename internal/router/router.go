package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/hbagde424/employee-management/internal/bootstrap"
	"github.com/hbagde424/employee-management/internal/handler"
	"github.com/hbagde424/employee-management/internal/middleware"
	"github.com/hbagde424/employee-management/internal/repository"
)

// APIPrefix is the version prefix all API routes live under.
const APIPrefix = "/api/v1"

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication and RBAC administration routes.
// Register, login and refresh are open (rate limited when a limiter is
// supplied); everything else requires a valid access token, and the
// mutating role/permission endpoints additionally require the admin role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rb *handler.RBACHandler,
	users *repository.UserRepo, jwtSecret string, limiter echo.MiddlewareFunc) {

	g := e.Group(APIPrefix + "/auth")

	// Open endpoints: these mint or exchange tokens, so no token is
	// required to call them.
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh)

	authn := middleware.Authenticate(jwtSecret, users)
	admin := middleware.RequireRole(users, bootstrap.AdminRole)

	// Session endpoints for the authenticated caller.
	g.POST("/change-password", a.ChangePassword, authn)
	g.GET("/me", a.Me, authn)

	// Role/permission catalog: reads for any authenticated user, writes
	// for admins only.
	g.GET("/roles", rb.ListRoles, authn)
	g.POST("/roles", rb.CreateRole, authn, admin)
	g.POST("/users/:id/roles", rb.AssignRole, authn, admin)
	g.GET("/permissions", rb.ListPermissions, authn)
	g.POST("/permissions", rb.CreatePermission, authn, admin)
}

// RegisterEmployees registers the employee CRUD and statistics routes. All
// of them require authentication; mutations additionally require the
// matching employee permission resolved through the permission graph, so a
// role re-assignment takes effect without re-issuing tokens.
func RegisterEmployees(e *echo.Echo, emp *handler.EmployeeHandler, st *handler.StatsHandler,
	users *repository.UserRepo, jwtSecret string) {

	authn := middleware.Authenticate(jwtSecret, users)

	g := e.Group(APIPrefix+"/employees", authn)
	g.POST("", emp.Create, middleware.RequirePermission(users, "employee:create"))
	g.GET("", emp.List)
	g.GET("/department/:department", emp.ByDepartment)
	g.GET("/active/list", emp.Active)
	g.GET("/:id", emp.Get)
	g.PUT("/:id", emp.Update, middleware.RequirePermission(users, "employee:update"))
	g.DELETE("/:id", emp.Delete, middleware.RequirePermission(users, "employee:delete"))

	e.GET(APIPrefix+"/stats", st.Get, authn)
}
