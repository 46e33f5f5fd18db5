package models

import (
	"time"
)

const (
	// CategoryKindFee is a regular obligation such as a library or tuition fee.
	CategoryKindFee = "fee"
	// CategoryKindFine is a penalty charge.
	CategoryKindFine = "fine"
)

// Category is a named obligation type ("Library Fee", "Late Fine", ...).
// Categories are deactivated instead of deleted while any ledger entry or
// payment event still references them.
type Category struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Kind          string    `json:"kind" gorm:"size:10;not null;index"` // fee / fine
	DefaultAmount float64   `json:"default_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Active        bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// IsValidCategoryKind reports whether kind is one of the known category kinds.
func IsValidCategoryKind(kind string) bool {
	return kind == CategoryKindFee || kind == CategoryKindFine
}
