package models

import (
	"time"

	"gorm.io/gorm"
)

// ExpenditureRecord is money spent by the institution. It is independent of
// the student ledger; the two meet only in the dashboard aggregation where
// balance = total income - total expenditure.
type ExpenditureRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Amount        float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category      string         `json:"category" gorm:"size:50;not null;index"`
	Description   string         `json:"description" gorm:"size:255"`
	Date          time.Time      `json:"date" gorm:"not null;index"`
	ReceiptNumber string         `json:"receipt_number" gorm:"size:30;not null;uniqueIndex"`
	AddedBy       string         `json:"added_by" gorm:"size:50;not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ExpenditureRecord) TableName() string {
	return "expenditure_records"
}
