package staff

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/JamesPrial/pii-leak-test/pkg/database"
	"github.com/JamesPrial/pii-leak-test/pkg/metrics"
	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
)

// StaffRepository defines the interface for staff record operations
type StaffRepository interface {
	Create(ctx context.Context, record models.StaffRecord) (*models.StaffRecord, error)
	BulkCreate(ctx context.Context, records []models.StaffRecord) error
	GetByID(ctx context.Context, employeeID string) (*models.StaffRecord, error)
	List(ctx context.Context, department string, page, pageSize int) ([]models.StaffRecord, int, error)
	GetDirectReports(ctx context.Context, employeeID string) ([]models.StaffRecord, error)
	Delete(ctx context.Context, employeeID string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Repository implements StaffRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new staff repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "staff_pii"

var columns = []string{
	"employee_id", "name", "email", "phone", "address", "date_of_birth", "ssn",
	"department", "job_title", "hire_date", "manager", "salary",
	"bank_account_number", "routing_number", "medical_condition",
}

// Create inserts a single staff record
func (r *Repository) Create(ctx context.Context, record models.StaffRecord) (*models.StaffRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.Create")
	defer span.End()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(recordValues(record)...)
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create staff record")
		return nil, fmt.Errorf("failed to create staff record: %w", err)
	}

	metrics.RecordsPersistedTotal.WithLabelValues(tableName).Inc()

	return r.GetByID(ctx, record.EmployeeID)
}

// BulkCreate inserts a full batch in one transaction. The manager foreign key
// is deferred, so records can arrive in any order; nothing is kept if any row
// fails.
func (r *Repository) BulkCreate(ctx context.Context, records []models.StaffRecord) error {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.BulkCreate")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	txCtx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin staff bulk insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	for _, record := range records {
		sb.Values(recordValues(record)...)
	}
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"count": len(records),
		}).Error("failed to bulk insert staff records")
		return fmt.Errorf("failed to bulk insert staff records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit staff bulk insert: %w", err)
	}

	metrics.RecordsPersistedTotal.WithLabelValues(tableName).Add(float64(len(records)))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"count": len(records),
	}).Info("bulk inserted staff records")

	return nil
}

// GetByID gets a staff record by employee ID
func (r *Repository) GetByID(ctx context.Context, employeeID string) (*models.StaffRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("employee_id", employeeID))
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	var record models.StaffRecord
	err := r.db.GetContext(ctx, &record, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get staff record by ID")
		return nil, fmt.Errorf("failed to get staff record: %w", err)
	}

	return &record, nil
}

// List lists staff records with optional department filter and pagination
func (r *Repository) List(ctx context.Context, department string, page, pageSize int) ([]models.StaffRecord, int, error) {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	if department != "" {
		countSb.Where(countSb.Equal("department", department))
	}
	countSb.SetFlavor(sqlbuilder.PostgreSQL)

	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count staff records")
		return nil, 0, fmt.Errorf("failed to count staff records: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	if department != "" {
		sb.Where(sb.Equal("department", department))
	}
	sb.OrderBy("name").Asc()
	sb.Limit(pageSize)
	sb.Offset(offset)
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	records := []models.StaffRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list staff records")
		return nil, 0, fmt.Errorf("failed to list staff records: %w", err)
	}

	return records, totalCount, nil
}

// GetDirectReports returns the staff records reporting to the given employee
func (r *Repository) GetDirectReports(ctx context.Context, employeeID string) ([]models.StaffRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.GetDirectReports")
	defer span.End()

	manager, err := r.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("manager", manager.EmployeeID))
	sb.OrderBy("name").Asc()
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	records := []models.StaffRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get direct reports")
		return nil, fmt.Errorf("failed to get direct reports: %w", err)
	}

	return records, nil
}

// Delete removes a staff record by employee ID
func (r *Repository) Delete(ctx context.Context, employeeID string) error {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("employee_id", employeeID))
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete staff record")
		return fmt.Errorf("failed to delete staff record: %w", err)
	}

	return nil
}

// DeleteAll removes every staff record. It joins a transaction already open
// on the context, so replace-style persists stay all-or-nothing.
func (r *Repository) DeleteAll(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.DeleteAll")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin staff delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.ExecContext(txCtx, "DELETE FROM "+tableName); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete staff records")
		return fmt.Errorf("failed to delete staff records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit staff delete: %w", err)
	}

	return nil
}

// Count returns the total number of staff records
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "StaffRepository.Count")
	defer span.End()

	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+tableName); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count staff records")
		return 0, fmt.Errorf("failed to count staff records: %w", err)
	}

	return count, nil
}

func recordValues(record models.StaffRecord) []any {
	return []any{
		record.EmployeeID, record.Name, record.Email, record.Phone, record.Address,
		record.DateOfBirth, record.SSN, record.Department, record.JobTitle,
		record.HireDate, record.Manager, record.Salary,
		record.BankAccountNumber, record.RoutingNumber, record.MedicalCondition,
	}
}
