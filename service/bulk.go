package service

import (
	"errors"

	"feeledger/database"
	"feeledger/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Authorization is the operator capability required by destructive bulk
// operations. Handlers construct it only after re-verifying the operator's
// password, so the destructive path is gated explicitly rather than by
// ambient session state.
type Authorization struct {
	OperatorID uint
}

func (a Authorization) valid() bool {
	return a.OperatorID != 0
}

// BulkManager generates ledger entries for cohorts and performs guarded
// bulk deletion. It is the only code path permitted to delete paid history.
type BulkManager struct {
	store *LedgerStore
	log   *logrus.Logger
}

func NewBulkManager(store *LedgerStore, log *logrus.Logger) *BulkManager {
	return &BulkManager{store: store, log: log}
}

// ClassOutcome is the per-class result of a generation job, reported in the
// order the classes were requested.
type ClassOutcome struct {
	Class   string `json:"class"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// GenerateResult summarizes one generation job.
type GenerateResult struct {
	EntriesCreated int            `json:"entries_created"`
	EntriesSkipped int            `json:"entries_skipped"`
	Classes        []ClassOutcome `json:"classes"`
}

// Generate creates one ledger entry per student for every class in classes.
// A student already holding an entry for the (category, year) key is counted
// as skipped, never aborts the job: re-running generation is idempotent at
// the level of final state. Rows are processed in roster order per class, so
// outcomes are deterministic. Only infrastructure failures abort the job;
// entries already created stay created.
func (m *BulkManager) Generate(categoryID uint, classes []string, academicYear string, amount float64) (*GenerateResult, error) {
	var category models.Category
	if err := database.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !category.Active {
		return nil, ErrInactiveCategory
	}

	if amount <= 0 {
		amount = category.DefaultAmount
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(classes) == 0 {
		return nil, ErrNoClasses
	}

	result := &GenerateResult{}
	for _, class := range classes {
		outcome := ClassOutcome{Class: class}

		var students []models.Student
		if err := database.DB.Where("class = ?", class).
			Order("roll_no ASC, id ASC").Find(&students).Error; err != nil {
			return nil, err
		}

		for i := range students {
			_, err := m.store.createEntry(database.DB, students[i].ID, category.ID, academicYear, amount)
			switch {
			case err == nil:
				outcome.Created++
			case errors.Is(err, ErrDuplicateEntry):
				outcome.Skipped++
			default:
				// storage-level failure, abort; already-created rows remain
				return nil, err
			}
		}

		result.EntriesCreated += outcome.Created
		result.EntriesSkipped += outcome.Skipped
		result.Classes = append(result.Classes, outcome)
	}

	m.log.WithFields(logrus.Fields{
		"category": category.Name,
		"year":     academicYear,
		"created":  result.EntriesCreated,
		"skipped":  result.EntriesSkipped,
	}).Info("ledger generation completed")

	return result, nil
}

// BulkDeleteResult summarizes one bulk deletion.
type BulkDeleteResult struct {
	DeletedCount        int64 `json:"deleted_count"`
	PaymentsRemoved     int64 `json:"payments_removed"`
	SkippedWithPayments int64 `json:"skipped_with_payments"`
}

// BulkDelete removes all ledger entries for (category, class). Entries with
// recorded payments are kept unless includeWithPayments is set, in which
// case their payment events are removed with them; this is the only path
// that may destroy paid history, and it requires a valid authorization
// capability. The delete is two-phase: affected rows are collected first so
// the removed counts reported back are exact.
func (m *BulkManager) BulkDelete(auth Authorization, categoryID uint, class string, includeWithPayments bool) (*BulkDeleteResult, error) {
	if !auth.valid() {
		return nil, ErrNotAuthorized
	}

	result := &BulkDeleteResult{}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// lock the collected rows so a payment cannot land between the
		// paid/unpaid classification and the delete below
		var entries []models.LedgerEntry
		if err := tx.Model(&models.LedgerEntry{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("ledger_entries.*").
			Joins("JOIN students ON students.id = ledger_entries.student_id").
			Where("ledger_entries.category_id = ? AND students.class = ?", categoryID, class).
			Find(&entries).Error; err != nil {
			return err
		}

		var deletable, withPayments []uint
		for i := range entries {
			if entries[i].PaidAmount > 0 {
				withPayments = append(withPayments, entries[i].ID)
			} else {
				deletable = append(deletable, entries[i].ID)
			}
		}

		if includeWithPayments && len(withPayments) > 0 {
			res := tx.Where("ledger_entry_id IN ?", withPayments).Delete(&models.PaymentEvent{})
			if res.Error != nil {
				return res.Error
			}
			result.PaymentsRemoved = res.RowsAffected
			deletable = append(deletable, withPayments...)
		} else {
			result.SkippedWithPayments = int64(len(withPayments))
		}

		if len(deletable) == 0 {
			return nil
		}
		res := tx.Where("id IN ?", deletable).Delete(&models.LedgerEntry{})
		if res.Error != nil {
			return res.Error
		}
		result.DeletedCount = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{
		"operator":         auth.OperatorID,
		"category_id":      categoryID,
		"class":            class,
		"deleted":          result.DeletedCount,
		"payments_removed": result.PaymentsRemoved,
	}).Info("bulk delete completed")

	return result, nil
}

// DeletableOptions lists the (class, category) values that currently hold at
// least one ledger entry, so operators cannot target an empty selection.
type DeletableOptions struct {
	Classes    []string          `json:"classes"`
	Categories []models.Category `json:"categories"`
}

// ListDeletableOptions returns the classes and categories with live entries.
func (m *BulkManager) ListDeletableOptions() (*DeletableOptions, error) {
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

	return &DeletableOptions{Classes: classes, Categories: categories}, nil
}
