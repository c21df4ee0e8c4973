package audit

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/JamesPrial/pii-leak-test/pkg/database"
	"github.com/JamesPrial/pii-leak-test/pkg/metrics"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
)

// maxRows caps how many rows a single auditor query may return.
const maxRows = 1000

// Executor runs validated read-only queries for the auditor surface.
type Executor struct {
	db     database.DB
	logger ectologger.Logger
}

// NewExecutor creates a new auditor query executor
func NewExecutor(db database.DB, logger ectologger.Logger) *Executor {
	return &Executor{
		db:     db,
		logger: logger,
	}
}

// QueryResult holds the rows returned by one auditor query.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
	Capped   bool             `json:"capped"`
}

// Query validates and executes a read-only statement, returning rows as
// column-keyed maps.
func (e *Executor) Query(ctx context.Context, query string) (*QueryResult, error) {
	ctx, span := tracing.StartSpan(ctx, "audit.Executor.Query")
	defer span.End()

	if err := ValidateReadOnly(query); err != nil {
		metrics.AuditQueriesTotal.WithLabelValues("rejected").Inc()
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"query": query,
		}).Warn("rejected auditor query")
		return nil, err
	}

	rows, err := e.db.QueryxContext(ctx, query)
	if err != nil {
		metrics.AuditQueriesTotal.WithLabelValues("failed").Inc()
		e.logger.WithContext(ctx).WithError(err).Error("auditor query failed")
		return nil, fmt.Errorf("failed to execute auditor query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		metrics.AuditQueriesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &QueryResult{
		Columns: columns,
		Rows:    []map[string]any{},
	}

	for rows.Next() {
		if len(result.Rows) >= maxRows {
			result.Capped = true
			break
		}

		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			metrics.AuditQueriesTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		// pq hands back []byte for text columns in MapScan results.
		for key, value := range row {
			if b, ok := value.([]byte); ok {
				row[key] = string(b)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		metrics.AuditQueriesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	metrics.AuditQueriesTotal.WithLabelValues("allowed").Inc()

	return result, nil
}
