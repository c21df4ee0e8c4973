package client

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

// ClientRepository defines the interface for client record operations
type ClientRepository interface {
	Create(ctx context.Context, record models.ClientRecord) (*models.ClientRecord, error)
	BulkCreate(ctx context.Context, records []models.ClientRecord) error
	GetByID(ctx context.Context, recordID string) (*models.ClientRecord, error)
	List(ctx context.Context, page, pageSize int) ([]models.ClientRecord, int, error)
	Delete(ctx context.Context, recordID string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Repository implements ClientRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new client repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "client_pii"

var columns = []string{
	"record_id", "name", "email", "phone", "address", "date_of_birth",
	"salary", "medical_condition", "ssn", "credit_card",
}

// Create inserts a single client record
func (r *Repository) Create(ctx context.Context, record models.ClientRecord) (*models.ClientRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.Create")
	defer span.End()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(recordValues(record)...)
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create client record")
		return nil, fmt.Errorf("failed to create client record: %w", err)
	}

	metrics.RecordsPersistedTotal.WithLabelValues(tableName).Inc()

	return r.GetByID(ctx, record.RecordID)
}

// BulkCreate inserts a full batch in one transaction; nothing is kept if any
// row fails.
func (r *Repository) BulkCreate(ctx context.Context, records []models.ClientRecord) error {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.BulkCreate")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	txCtx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin client bulk insert: %w", err)
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
		}).Error("failed to bulk insert client records")
		return fmt.Errorf("failed to bulk insert client records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit client bulk insert: %w", err)
	}

	metrics.RecordsPersistedTotal.WithLabelValues(tableName).Add(float64(len(records)))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"count": len(records),
	}).Info("bulk inserted client records")

	return nil
}

// GetByID gets a client record by record ID
func (r *Repository) GetByID(ctx context.Context, recordID string) (*models.ClientRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("record_id", recordID))
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	var record models.ClientRecord
	err := r.db.GetContext(ctx, &record, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get client record by ID")
		return nil, fmt.Errorf("failed to get client record: %w", err)
	}

	return &record, nil
}

// List lists client records with pagination
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.ClientRecord, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.List")
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

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM "+tableName); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count client records")
		return nil, 0, fmt.Errorf("failed to count client records: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.OrderBy("name").Asc()
	sb.Limit(pageSize)
	sb.Offset(offset)
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	records := []models.ClientRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list client records")
		return nil, 0, fmt.Errorf("failed to list client records: %w", err)
	}

	return records, totalCount, nil
}

// Delete removes a client record by record ID
func (r *Repository) Delete(ctx context.Context, recordID string) error {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("record_id", recordID))
	sb.SetFlavor(sqlbuilder.PostgreSQL)

	query, args := sb.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete client record")
		return fmt.Errorf("failed to delete client record: %w", err)
	}

	return nil
}

// DeleteAll removes every client record. It joins a transaction already open
// on the context, so replace-style persists stay all-or-nothing.
func (r *Repository) DeleteAll(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.DeleteAll")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin client delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.ExecContext(txCtx, "DELETE FROM "+tableName); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete client records")
		return fmt.Errorf("failed to delete client records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit client delete: %w", err)
	}

	return nil
}

// Count returns the total number of client records
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.Count")
	defer span.End()

	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+tableName); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count client records")
		return 0, fmt.Errorf("failed to count client records: %w", err)
	}

	return count, nil
}

func recordValues(record models.ClientRecord) []any {
	return []any{
		record.RecordID, record.Name, record.Email, record.Phone, record.Address,
		record.DateOfBirth, record.Salary, record.MedicalCondition,
		record.SSN, record.CreditCard,
	}
}
