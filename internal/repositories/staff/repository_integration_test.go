package staff_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JamesPrial/pii-leak-test/internal/repositories/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/database"
	"github.com/JamesPrial/pii-leak-test/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "piigen"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

func testStaffRecord(name string, manager *string) models.StaffRecord {
	return models.StaffRecord{
		EmployeeID:        uuid.New().String(),
		Name:              name,
		Email:             "test." + uuid.New().String()[:8] + "@example-corp.com",
		Phone:             "609-312-4455",
		Address:           "12 Main Street, Trenton, NJ 08608",
		DateOfBirth:       "1987-04-12",
		SSN:               "141-22-3344",
		Department:        "Engineering",
		JobTitle:          "Software Engineer I",
		HireDate:          "2019-06-03",
		Manager:           manager,
		Salary:            82000,
		BankAccountNumber: "4417123456789113",
		RoutingNumber:     "121000248",
	}
}

func TestIntegrationStaffRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	defer db.Close()

	repo := staff.NewRepository(db, getTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.DeleteAll(ctx))

	record := testStaffRecord("Integration Root Manager "+uuid.New().String()[:8], nil)
	created, err := repo.Create(ctx, record)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, record.EmployeeID, created.EmployeeID)

	fetched, err := repo.GetByID(ctx, record.EmployeeID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, record.Name, fetched.Name)
	assert.Equal(t, record.SSN, fetched.SSN)
	assert.Nil(t, fetched.Manager)

	require.NoError(t, repo.Delete(ctx, record.EmployeeID))

	gone, err := repo.GetByID(ctx, record.EmployeeID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIntegrationStaffRepository_BulkCreateAndReports(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	defer db.Close()

	repo := staff.NewRepository(db, getTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.DeleteAll(ctx))

	manager := testStaffRecord("Bulk Manager "+uuid.New().String()[:8], nil)
	manager.JobTitle = "Engineering Manager"
	manager.Salary = 180000

	records := []models.StaffRecord{manager}
	for i := 0; i < 5; i++ {
		r := testStaffRecord(fmt.Sprintf("Bulk Report %d %s", i, uuid.New().String()[:8]), &manager.EmployeeID)
		records = append(records, r)
	}

	require.NoError(t, repo.BulkCreate(ctx, records))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(records), count)

	reports, err := repo.GetDirectReports(ctx, manager.EmployeeID)
	require.NoError(t, err)
	require.Len(t, reports, 5)
	for _, report := range reports {
		require.NotNil(t, report.Manager)
		assert.Equal(t, manager.EmployeeID, *report.Manager)
	}

	require.NoError(t, repo.DeleteAll(ctx))
}

func TestIntegrationStaffRepository_ListPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	defer db.Close()

	repo := staff.NewRepository(db, getTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.DeleteAll(ctx))

	var records []models.StaffRecord
	for i := 0; i < 7; i++ {
		r := testStaffRecord(fmt.Sprintf("List Staff %d %s", i, uuid.New().String()[:8]), nil)
		if i < 3 {
			r.Department = "Finance"
			r.JobTitle = "Financial Analyst"
		}
		records = append(records, r)
	}
	require.NoError(t, repo.BulkCreate(ctx, records))

	page1, total, err := repo.List(ctx, "", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, page1, 5)

	page2, total, err := repo.List(ctx, "", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, page2, 2)

	finance, total, err := repo.List(ctx, "Finance", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, finance, 3)
	for _, r := range finance {
		assert.Equal(t, "Finance", r.Department)
	}

	require.NoError(t, repo.DeleteAll(ctx))
}

func TestIntegrationStaffRepository_JoinsCallerTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	defer db.Close()

	repo := staff.NewRepository(db, getTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.DeleteAll(ctx))
	_, err := repo.Create(ctx, testStaffRecord("Existing Row", nil))
	require.NoError(t, err)

	// Delete and insert inside a caller-owned transaction, then roll it
	// back. Neither should have touched the table.
	txCtx, tx, err := db.GetTx(ctx, &sql.TxOptions{})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(txCtx))
	require.NoError(t, repo.BulkCreate(txCtx, []models.StaffRecord{
		testStaffRecord("Rolled Back A", nil),
		testStaffRecord("Rolled Back B", nil),
	}))

	require.NoError(t, tx.Rollback(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "rolled back transaction changed the table")

	// Same sequence committed by the caller replaces the table atomically.
	txCtx, tx, err = db.GetTx(ctx, &sql.TxOptions{})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(txCtx))
	require.NoError(t, repo.BulkCreate(txCtx, []models.StaffRecord{
		testStaffRecord("Committed A", nil),
		testStaffRecord("Committed B", nil),
	}))

	require.NoError(t, tx.Commit(ctx))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.DeleteAll(ctx))
}
