package models

import (
	"time"
)

// Payment modes accepted by the recorder.
const (
	PaymentModeCash   = "cash"
	PaymentModeCheque = "cheque"
	PaymentModeUPI    = "upi"
	PaymentModeOnline = "online"
)

// PaymentEvent is one money-movement record. Events are append-only: there
// is no update path, and deletion happens only as a side effect of the
// explicitly-cascading delete of the owning ledger entry.
//
// LedgerEntryID is nil for standalone fee/fine transactions that are not
// tied to a generated ledger line.
type PaymentEvent struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	LedgerEntryID *uint     `json:"ledger_entry_id" gorm:"index"`
	StudentID     uint      `json:"student_id" gorm:"not null;index"`
	CategoryID    *uint     `json:"category_id" gorm:"index"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Mode          string    `json:"mode" gorm:"size:20;not null"`
	ReceiptNumber string    `json:"receipt_number" gorm:"size:30;not null;uniqueIndex"`
	// ReferenceID distinguishes retried submissions in the event history.
	// Clients wanting at-most-once semantics supply their own; otherwise the
	// recorder stamps a fresh one and duplicate submissions are treated as
	// two real payments.
	ReferenceID string    `json:"reference_id" gorm:"size:36;not null;index"`
	Remarks     string    `json:"remarks" gorm:"size:255"`
	PaidAt      time.Time `json:"paid_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	Student     Student   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}

// IsValidPaymentMode reports whether mode is one of the accepted modes.
func IsValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeCash, PaymentModeCheque, PaymentModeUPI, PaymentModeOnline:
		return true
	}
	return false
}
