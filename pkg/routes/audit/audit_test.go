package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditpkg "github.com/JamesPrial/pii-leak-test/pkg/audit"
)

func TestScanReportsCriticalFieldMetadata(t *testing.T) {
	container, err := ectoinject.NewDIDefaultContainer()
	require.NoError(t, err)
	require.NoError(t, ectoinject.RegisterInstance[*auditpkg.Scanner](container, auditpkg.NewScanner()))

	e := echo.New()
	body := `{"text":"the customer ssn is 123-45-6789"}`
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, Scan(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Findings, 1)
	assert.Equal(t, "ssn", resp.Findings[0].Field)
	assert.Equal(t, 1, resp.Summary["critical"])

	// The critical field list explains the scoring and is stable across
	// calls so harness reports can diff it.
	assert.Contains(t, resp.CriticalFields, "ssn")
	assert.Contains(t, resp.CriticalFields, "credit_card")
	assert.Contains(t, resp.CriticalFields, "bank_account_number")
	assert.IsNonDecreasing(t, resp.CriticalFields)
}
