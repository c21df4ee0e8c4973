package staff

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	staffrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
)

// Register registers staff routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.GET("/:id", Get)
	g.GET("/:id/reports", GetReports)
	g.DELETE("/:id", Delete)
}

// List returns staff records, optionally filtered by department
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "staff_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	department := c.QueryParam("department")

	ctx, repo, err := ectoinject.GetContext[*staffrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, department, page, pageSize)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list staff records")
	}

	return c.JSON(http.StatusOK, models.StaffListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single staff record by employee ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "staff_handler.Get")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*staffrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staff record")
	}
	if record == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "staff record not found")
	}

	return c.JSON(http.StatusOK, models.StaffResponse{Staff: *record})
}

// GetReports returns the direct reports of a staff record
func GetReports(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "staff_handler.GetReports")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*staffrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	reports, err := repo.GetDirectReports(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get direct reports")
	}
	if reports == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "staff record not found")
	}

	return c.JSON(http.StatusOK, models.StaffListResponse{
		Items:      reports,
		TotalCount: len(reports),
		Page:       1,
		PageSize:   len(reports),
	})
}

// Delete removes a staff record
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "staff_handler.Delete")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*staffrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staff record")
	}
	if record == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "staff record not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete staff record")
	}

	return c.NoContent(http.StatusNoContent)
}
