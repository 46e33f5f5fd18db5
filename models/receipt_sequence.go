package models

// ReceiptSequence is the single-row counter behind receipt numbers. All
// receipt kinds share one sequence so numbers stay globally unique and
// monotonically traceable across payments, fines and expenditures.
type ReceiptSequence struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Next uint64 `json:"next" gorm:"not null;default:1"`
}

func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}
