package models

import (
	"time"
)

const (
	LedgerStatusUnpaid  = "unpaid"
	LedgerStatusPartial = "partial"
	LedgerStatusPaid    = "paid"
)

// LedgerEntry is one student's obligation for one category in one academic
// year. The (student, category, year) key is unique at the storage layer so
// cohort generation can never double-charge.
//
// There is no soft-delete column: an entry either exists and is counted by
// every aggregate, or it was removed through a guarded delete together with
// its payment history.
type LedgerEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	StudentID    uint      `json:"student_id" gorm:"not null;index;uniqueIndex:idx_ledger_entry_key"`
	CategoryID   uint      `json:"category_id" gorm:"not null;index;uniqueIndex:idx_ledger_entry_key"`
	AcademicYear string    `json:"academic_year" gorm:"size:10;not null;uniqueIndex:idx_ledger_entry_key"`
	TotalAmount  float64   `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	PaidAmount   float64   `json:"paid_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Status       string    `json:"status" gorm:"size:10;not null;default:unpaid;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Student      Student   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Category     Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// DeriveLedgerStatus computes the status from the two amounts. Status is
// persisted for query performance but is re-stamped from this function on
// every write path; caller-supplied status is never trusted.
func DeriveLedgerStatus(paid, total float64) string {
	switch {
	case paid <= 0:
		return LedgerStatusUnpaid
	case paid >= total:
		return LedgerStatusPaid
	default:
		return LedgerStatusPartial
	}
}

// Pending returns the amount still owed on the entry.
func (e *LedgerEntry) Pending() float64 {
	return e.TotalAmount - e.PaidAmount
}
