package service

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func studentColumns() []string {
	return []string{"id", "prn", "roll_no", "name", "class", "division", "academic_year", "created_at", "updated_at", "deleted_at"}
}

func categoryColumns() []string {
	return []string{"id", "name", "kind", "default_amount", "active", "created_at", "updated_at"}
}

func TestBulkManagerGenerateCreatesAndSkips(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))

	// roster for class TE, roll order
	mock.ExpectQuery("SELECT .* FROM `students`").
		WillReturnRows(sqlmock.NewRows(studentColumns()).
			AddRow(1, "PRN001", 1, "Asha", "TE", "A", "2024-25", now, now, nil).
			AddRow(2, "PRN002", 2, "Bhavesh", "TE", "A", "2024-25", now, now, nil))

	// student 1: no existing entry, created
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	// student 2: entry already exists, skipped
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(9, 2, 2, "2024-25", 500, 0, "unpaid", now, now))

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	result, err := m.Generate(2, []string{"TE"}, "2024-25", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesCreated)
	assert.Equal(t, 1, result.EntriesSkipped)
	require.Len(t, result.Classes, 1)
	assert.Equal(t, "TE", result.Classes[0].Class)
	assert.Equal(t, 1, result.Classes[0].Created)
	assert.Equal(t, 1, result.Classes[0].Skipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerGenerateRerunSkipsAll(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))
	mock.ExpectQuery("SELECT .* FROM `students`").
		WillReturnRows(sqlmock.NewRows(studentColumns()).
			AddRow(1, "PRN001", 1, "Asha", "TE", "A", "2024-25", now, now, nil).
			AddRow(2, "PRN002", 2, "Bhavesh", "TE", "A", "2024-25", now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(10, 1, 2, "2024-25", 500, 0, "unpaid", now, now))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(11, 2, 2, "2024-25", 500, 0, "unpaid", now, now))

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	result, err := m.Generate(2, []string{"TE"}, "2024-25", 500)
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntriesCreated)
	assert.Equal(t, 2, result.EntriesSkipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerGenerateCategoryNotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()))

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	_, err := m.Generate(99, []string{"TE"}, "2024-25", 500)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerGenerateDefaultAmount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))
	mock.ExpectQuery("SELECT .* FROM `students`").
		WillReturnRows(sqlmock.NewRows(studentColumns()).
			AddRow(1, "PRN001", 1, "Asha", "TE", "A", "2024-25", now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	// amount 0 falls back to the category default
	result, err := m.Generate(2, []string{"TE"}, "2024-25", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesCreated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerBulkDeleteRequiresAuthorization(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	_, err := m.BulkDelete(Authorization{}, 2, "TE", true)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestBulkManagerBulkDeleteCascades(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(10, 1, 2, "2024-25", 500, 500, "paid", now, now).
			AddRow(11, 2, 2, "2024-25", 500, 0, "unpaid", now, now))
	mock.ExpectExec("DELETE FROM `payment_events`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	result, err := m.BulkDelete(Authorization{OperatorID: 1}, 2, "TE", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.DeletedCount)
	assert.Equal(t, int64(3), result.PaymentsRemoved)
	assert.Equal(t, int64(0), result.SkippedWithPayments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerBulkDeleteKeepsPaidWithoutOptIn(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(10, 1, 2, "2024-25", 500, 500, "paid", now, now).
			AddRow(11, 2, 2, "2024-25", 500, 0, "unpaid", now, now))
	mock.ExpectExec("DELETE FROM `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	result, err := m.BulkDelete(Authorization{OperatorID: 1}, 2, "TE", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedCount)
	assert.Equal(t, int64(0), result.PaymentsRemoved)
	assert.Equal(t, int64(1), result.SkippedWithPayments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerListDeletableOptions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT DISTINCT .*`students`").
		WillReturnRows(sqlmock.NewRows([]string{"class"}).AddRow("SE").AddRow("TE"))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	opts, err := m.ListDeletableOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"SE", "TE"}, opts.Classes)
	require.Len(t, opts.Categories, 1)
	assert.Equal(t, "Library Fee", opts.Categories[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerGenerateInactiveCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(2, "Old Fee", "fee", 500, false, now, now))

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	_, err := m.Generate(2, []string{"TE"}, "2024-25", 500)
	assert.ErrorIs(t, err, ErrInactiveCategory)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkManagerGenerateNoClasses(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))

	m := NewBulkManager(NewLedgerStore(), quietLogger())
	_, err := m.Generate(2, nil, "2024-25", 500)
	assert.ErrorIs(t, err, ErrNoClasses)
	require.NoError(t, mock.ExpectationsWereMet())
}
