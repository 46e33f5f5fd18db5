package service

import (
	"errors"

	"feeledger/database"
	"feeledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore is the single writer of LedgerEntry amounts. Every mutation of
// paid_amount/status goes through its guarded methods; payment recording and
// bulk lifecycle jobs compose them, nothing else touches the table.
type LedgerStore struct{}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

// Create opens a new obligation for one student. The (student, category,
// year) key is also enforced by a unique index, so a lost race still comes
// back as ErrDuplicateEntry rather than a second charge.
func (s *LedgerStore) Create(studentID, categoryID uint, academicYear string, totalAmount float64) (*models.LedgerEntry, error) {
	if totalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var category models.Category
	if err := database.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.createEntry(database.DB, studentID, categoryID, academicYear, totalAmount)
}

// createEntry inserts one entry. Reference validation is the caller's
// responsibility; bulk generation validates once per job, not once per row.
func (s *LedgerStore) createEntry(db *gorm.DB, studentID, categoryID uint, academicYear string, totalAmount float64) (*models.LedgerEntry, error) {
	var existing models.LedgerEntry
	err := db.Where("student_id = ? AND category_id = ? AND academic_year = ?",
		studentID, categoryID, academicYear).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEntry
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := models.LedgerEntry{
		StudentID:    studentID,
		CategoryID:   categoryID,
		AcademicYear: academicYear,
		TotalAmount:  totalAmount,
		PaidAmount:   0,
		Status:       models.LedgerStatusUnpaid,
	}
	if err := db.Create(&entry).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	return &entry, nil
}

// ApplyPayment increases paid_amount by amount, rejecting overpayment.
func (s *LedgerStore) ApplyPayment(entryID uint, amount float64) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		e, err := s.applyPayment(tx, entryID, amount)
		entry = e
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// applyPayment is the serialization point for concurrent payments: the
// increment happens in one conditional UPDATE whose WHERE clause re-checks
// the overpayment guard against current data, so two concurrent payments can
// never both pass a stale check. Status is re-derived from the amounts, never
// taken from the caller.
func (s *LedgerStore) applyPayment(tx *gorm.DB, entryID uint, amount float64) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	res := tx.Model(&models.LedgerEntry{}).
		Where("id = ? AND paid_amount + ? <= total_amount", entryID, amount).
		Update("paid_amount", gorm.Expr("paid_amount + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}

	var entry models.LedgerEntry
	if err := tx.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if res.RowsAffected == 0 {
		// the entry exists, so the guard refused the increment
		return nil, ErrOverpayment
	}

	status := models.DeriveLedgerStatus(entry.PaidAmount, entry.TotalAmount)
	if entry.Status != status {
		if err := tx.Model(&entry).Update("status", status).Error; err != nil {
			return nil, err
		}
		entry.Status = status
	}
	return &entry, nil
}

// Delete removes one entry. An entry with recorded payments is refused
// unless force is set, in which case its payment events are removed in the
// same transaction and their count returned.
func (s *LedgerStore) Delete(entryID uint, force bool) (int64, error) {
	var removed int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.LedgerEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if entry.PaidAmount > 0 && !force {
			return ErrHasPayments
		}
		if force {
			res := tx.Where("ledger_entry_id = ?", entry.ID).Delete(&models.PaymentEvent{})
			if res.Error != nil {
				return res.Error
			}
			removed = res.RowsAffected
		}
		return tx.Delete(&models.LedgerEntry{}, entry.ID).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Get loads one entry with its student and category.
func (s *LedgerStore) Get(entryID uint) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := database.DB.Preload("Student").Preload("Category").First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// LedgerQuery filters the register listing.
type LedgerQuery struct {
	Class        string
	Division     string
	CategoryID   uint
	AcademicYear string
	Status       string
	Search       string // matches student name or PRN
	Sort         string // roll / name / pending / created
	Page         int
	PageSize     int
}

// LedgerSummary is computed over the filtered set, so the totals shown next
// to a listing always match the visible rows.
type LedgerSummary struct {
	EntryCount     int64   `json:"entry_count"`
	TotalAmount    float64 `json:"total_amount"`
	TotalCollected float64 `json:"total_collected"`
	TotalPending   float64 `json:"total_pending"`
}

// LedgerFilterOptions lists the values a caller can still filter by.
type LedgerFilterOptions struct {
	Classes    []string          `json:"classes"`
	Categories []models.Category `json:"categories"`
}

// LedgerPage is one page of the register plus its filtered summary.
type LedgerPage struct {
	Entries  []models.LedgerEntry `json:"entries"`
	Summary  LedgerSummary        `json:"summary"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Filters  LedgerFilterOptions  `json:"filter_options"`
}

// Query lists ledger entries with pagination, a filtered-set summary and the
// available filter options.
func (s *LedgerStore) Query(q LedgerQuery) (*LedgerPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.PageSize > 200 {
		q.PageSize = 200
	}

	filtered := func() *gorm.DB {
		db := database.DB.Model(&models.LedgerEntry{}).
			Joins("JOIN students ON students.id = ledger_entries.student_id")
		if q.Class != "" {
			db = db.Where("students.class = ?", q.Class)
		}
		if q.Division != "" {
			db = db.Where("students.division = ?", q.Division)
		}
		if q.CategoryID != 0 {
			db = db.Where("ledger_entries.category_id = ?", q.CategoryID)
		}
		if q.AcademicYear != "" {
			db = db.Where("ledger_entries.academic_year = ?", q.AcademicYear)
		}
		if q.Status != "" {
			db = db.Where("ledger_entries.status = ?", q.Status)
		}
		if q.Search != "" {
			like := "%" + q.Search + "%"
			db = db.Where("students.name LIKE ? OR students.prn LIKE ?", like, like)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	var summary LedgerSummary
	if err := filtered().
		Select("COALESCE(SUM(ledger_entries.total_amount), 0) AS total_amount, " +
			"COALESCE(SUM(ledger_entries.paid_amount), 0) AS total_collected, " +
			"COALESCE(SUM(ledger_entries.total_amount - ledger_entries.paid_amount), 0) AS total_pending").
		Scan(&summary).Error; err != nil {
		return nil, err
	}
	summary.EntryCount = total

	order := "students.class ASC, students.roll_no ASC"
	switch q.Sort {
	case "name":
		order = "students.name ASC"
	case "pending":
		order = "(ledger_entries.total_amount - ledger_entries.paid_amount) DESC"
	case "created":
		order = "ledger_entries.created_at DESC"
	}

	var entries []models.LedgerEntry
	offset := (q.Page - 1) * q.PageSize
	if err := filtered().
		Select("ledger_entries.*").
		Preload("Student").Preload("Category").
		Order(order).Offset(offset).Limit(q.PageSize).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	opts, err := s.filterOptions()
	if err != nil {
		return nil, err
	}

	return &LedgerPage{
		Entries:  entries,
		Summary:  summary,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Filters:  *opts,
	}, nil
}

func (s *LedgerStore) filterOptions() (*LedgerFilterOptions, error) {
	var classes []string
	if err := database.DB.Model(&models.LedgerEntry{}).
		Joins("JOIN students ON students.id = ledger_entries.student_id").
		Distinct().Order("students.class").
		Pluck("students.class", &classes).Error; err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := database.DB.Model(&models.Category{}).
		Where("id IN (?)", database.DB.Model(&models.LedgerEntry{}).Distinct().Select("category_id")).
		Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}

	return &LedgerFilterOptions{Classes: classes, Categories: categories}, nil
}
