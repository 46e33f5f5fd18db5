package service

import (
	"fmt"

	"feeledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Receipt kinds. All kinds draw from one shared counter, so a receipt number
// is globally unique and the sequence is traceable across payment, fine and
// expenditure history.
const (
	ReceiptKindPayment     = "PAY"
	ReceiptKindFine        = "FIN"
	ReceiptKindExpenditure = "EXP"
)

// ReceiptSequencer issues receipt numbers from the single counter row.
type ReceiptSequencer struct{}

func NewReceiptSequencer() *ReceiptSequencer {
	return &ReceiptSequencer{}
}

// Issue reserves the next receipt number inside the caller's transaction.
// The counter row is locked FOR UPDATE, so concurrent money-movement events
// can never share a number. Rolling back the transaction releases the number
// with it.
func (s *ReceiptSequencer) Issue(tx *gorm.DB, kind string) (string, error) {
	var seq models.ReceiptSequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq).Error; err != nil {
		return "", fmt.Errorf("load receipt sequence: %w", err)
	}

	n := seq.Next
	if err := tx.Model(&models.ReceiptSequence{}).
		Where("id = ?", seq.ID).
		UpdateColumn("next", gorm.Expr("next + 1")).Error; err != nil {
		return "", fmt.Errorf("advance receipt sequence: %w", err)
	}

	return FormatReceiptNumber(kind, n), nil
}

// FormatReceiptNumber renders a sequence value as a receipt number,
// e.g. PAY-000042.
func FormatReceiptNumber(kind string, n uint64) string {
	return fmt.Sprintf("%s-%06d", kind, n)
}
