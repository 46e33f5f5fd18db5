package service

import (
	"database/sql/driver"
	"testing"
	"time"

	"feeledger/database"
	"feeledger/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func ledgerEntryColumns() []string {
	return []string{"id", "student_id", "category_id", "academic_year", "total_amount", "paid_amount", "status", "created_at", "updated_at"}
}

func TestLedgerStoreCreateInvalidAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	store := NewLedgerStore()
	_, err := store.Create(1, 1, "2024-25", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = store.Create(1, 1, "2024-25", -50)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedgerStoreCreateDuplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `students`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "prn", "roll_no", "name", "class", "division", "academic_year", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "PRN001", 1, "Asha", "TE", "A", "2024-25", now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "kind", "default_amount", "active", "created_at", "updated_at"}).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))
	// key already taken
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(7, 1, 2, "2024-25", 500, 0, "unpaid", now, now))

	store := NewLedgerStore()
	_, err := store.Create(1, 2, "2024-25", 500)
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreCreate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `students`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "prn", "roll_no", "name", "class", "division", "academic_year", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "PRN001", 1, "Asha", "TE", "A", "2024-25", now, now, nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "kind", "default_amount", "active", "created_at", "updated_at"}).
			AddRow(2, "Library Fee", "fee", 500, true, now, now))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	store := NewLedgerStore()
	entry, err := store.Create(1, 2, "2024-25", 500)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerStatusUnpaid, entry.Status)
	assert.Equal(t, 500.0, entry.TotalAmount)
	assert.Equal(t, 0.0, entry.PaidAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreApplyPayment(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(7, 1, 2, "2024-25", 500, 500, "unpaid", now, now))
	// derived status re-stamped
	mock.ExpectExec("UPDATE `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewLedgerStore()
	entry, err := store.ApplyPayment(7, 500)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerStatusPaid, entry.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreApplyPaymentOverpayment(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	// conditional update refuses the increment
	mock.ExpectExec("UPDATE `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(7, 1, 2, "2024-25", 500, 400, "partial", now, now))
	mock.ExpectRollback()

	store := NewLedgerStore()
	_, err := store.ApplyPayment(7, 200)
	assert.ErrorIs(t, err, ErrOverpayment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreApplyPaymentNotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()))
	mock.ExpectRollback()

	store := NewLedgerStore()
	_, err := store.ApplyPayment(999, 100)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreApplyPaymentInvalidAmount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	store := NewLedgerStore()
	_, err := store.ApplyPayment(7, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreDeleteHasPayments(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `ledger_entries` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(7, 1, 2, "2024-25", 500, 100, "partial", now, now))
	mock.ExpectRollback()

	store := NewLedgerStore()
	_, err := store.Delete(7, false)
	assert.ErrorIs(t, err, ErrHasPayments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreDeleteForceCascades(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `ledger_entries` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(7, 1, 2, "2024-25", 500, 100, "partial", now, now))
	mock.ExpectExec("DELETE FROM `payment_events`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewLedgerStore()
	removed, err := store.Delete(7, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStoreDeleteUnpaid(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `ledger_entries` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(7, 1, 2, "2024-25", 500, 0, "unpaid", now, now))
	mock.ExpectExec("DELETE FROM `ledger_entries`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewLedgerStore()
	removed, err := store.Delete(7, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The summary totals must be computed over the same filtered set as the
// listed rows, and out-of-range pagination values are clamped.
func TestLedgerStoreQueryFilteredSummary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	filterArgs := []driver.Value{"TE", "A", "%asha%", "%asha%"}

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `ledger_entries`").
		WithArgs(filterArgs...).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(ledger_entries.total_amount\\), 0\\)").
		WithArgs(filterArgs...).
		WillReturnRows(sqlmock.NewRows([]string{"total_amount", "total_collected", "total_pending"}).
			AddRow(1000.0, 400.0, 600.0))
	mock.ExpectQuery("SELECT ledger_entries\\.\\* FROM `ledger_entries`.*ORDER BY students.name ASC LIMIT 200").
		WithArgs(filterArgs...).
		WillReturnRows(sqlmock.NewRows(ledgerEntryColumns()).
			AddRow(1, 1, 3, "2024-25", 1000, 400, models.LedgerStatusPartial, now, now))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(3, "Tuition Fee", "fee", 1000, true, now, now))
	mock.ExpectQuery("SELECT .* FROM `students`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(studentColumns()).
			AddRow(1, "PRN001", 1, "Asha", "TE", "A", "2024-25", now, now, nil))
	mock.ExpectQuery("SELECT DISTINCT .*students.class.* FROM `ledger_entries`").
		WillReturnRows(sqlmock.NewRows([]string{"class"}).AddRow("TE"))
	mock.ExpectQuery("SELECT .* FROM `categories` WHERE id IN").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(3, "Tuition Fee", "fee", 1000, true, now, now))

	s := NewLedgerStore()
	page, err := s.Query(LedgerQuery{
		Class:    "TE",
		Division: "A",
		Search:   "asha",
		Sort:     "name",
		Page:     0,
		PageSize: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 200, page.PageSize)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(1), page.Summary.EntryCount)
	assert.Equal(t, 1000.0, page.Summary.TotalAmount)
	assert.Equal(t, 400.0, page.Summary.TotalCollected)
	assert.Equal(t, 600.0, page.Summary.TotalPending)
	assert.Len(t, page.Entries, 1)
	assert.Equal(t, []string{"TE"}, page.Filters.Classes)
	require.NoError(t, mock.ExpectationsWereMet())
}
