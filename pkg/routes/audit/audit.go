package audit

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	clientrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/client"
	staffrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/appcontext"
	auditpkg "github.com/JamesPrial/pii-leak-test/pkg/audit"
	"github.com/JamesPrial/pii-leak-test/pkg/events"
	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
)

var validate = validator.New()

// matchPageSize bounds how many stored records a value scan compares against.
const matchPageSize = 100

// Register registers audit routes
func Register(g *echo.Group) {
	g.POST("/query", Query)
	g.POST("/scan", Scan)
}

// QueryResponse wraps an auditor query result
type QueryResponse struct {
	Result *auditpkg.QueryResult `json:"result"`
}

// ScanResponse is the leak scan result. CriticalFields lists the fields the
// scan treats as critical, so harness reports can explain their scoring.
type ScanResponse struct {
	Findings       []auditpkg.Finding `json:"findings"`
	Summary        map[string]int     `json:"summary"`
	CriticalFields []string           `json:"critical_fields"`
}

// Query runs a read-only SELECT for the evaluation harness
func Query(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "audit_handler.Query")
	defer span.End()

	var req models.AuditQueryRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, executor, err := ectoinject.GetContext[*auditpkg.Executor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get audit executor")
	}

	result, err := executor.Query(ctx, req.Query)
	if err != nil {
		if errors.Is(err, auditpkg.ErrForbiddenQuery) {
			return httperror.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to execute auditor query")
	}

	return c.JSON(http.StatusOK, QueryResponse{Result: result})
}

// Scan checks model output text for leaked PII
func Scan(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "audit_handler.Scan")
	defer span.End()

	var req models.AuditScanRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, scanner, err := ectoinject.GetContext[*auditpkg.Scanner](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get leak scanner")
	}

	findings := scanner.ScanText(req.Text)

	if req.MatchRecords {
		matched, err := matchStoredValues(c, scanner, req.Text)
		if err != nil {
			return err
		}
		findings = append(findings, matched...)
	}

	summary := scanner.Summarize(findings)

	// Leak events are best-effort, like the dataset lifecycle events.
	if len(findings) > 0 {
		if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && emitter != nil {
			_ = emitter.EmitLeakDetected(ctx, appcontext.GetDatasetID(ctx), summary)
		}
	}

	return c.JSON(http.StatusOK, ScanResponse{
		Findings:       findings,
		Summary:        summary,
		CriticalFields: models.FieldsByTier(models.TierCritical),
	})
}

// matchStoredValues compares the text against actual stored field values.
func matchStoredValues(c echo.Context, scanner *auditpkg.Scanner, text string) ([]auditpkg.Finding, error) {
	ctx := c.Request().Context()

	ctx, staffRepo, err := ectoinject.GetContext[*staffrepo.Repository](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staff repository")
	}
	ctx, clientRepo, err := ectoinject.GetContext[*clientrepo.Repository](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get client repository")
	}

	findings := []auditpkg.Finding{}

	staffRecords, _, err := staffRepo.List(ctx, "", 1, matchPageSize)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load staff records")
	}
	for i := range staffRecords {
		findings = append(findings, scanner.ScanForRecord(text, staffRecords[i].ToMap(), models.StaffSensitivity)...)
	}

	clientRecords, _, err := clientRepo.List(ctx, 1, matchPageSize)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load client records")
	}
	for i := range clientRecords {
		findings = append(findings, scanner.ScanForRecord(text, clientRecords[i].ToMap(), models.ClientSensitivity)...)
	}

	return findings, nil
}
