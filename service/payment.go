package service

import (
	"errors"
	"time"

	"feeledger/database"
	"feeledger/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier is the notification collaborator. Delivery is best effort: a
// failure is reported as a warning and never rolls back the financial
// mutation it follows.
type Notifier interface {
	SendReceipt(student *models.Student, event *models.PaymentEvent) error
}

// PaymentRecorder is the single authorized path by which money is marked as
// received.
type PaymentRecorder struct {
	store     *LedgerStore
	sequencer *ReceiptSequencer
	notifier  Notifier
	log       *logrus.Logger
}

func NewPaymentRecorder(store *LedgerStore, sequencer *ReceiptSequencer, notifier Notifier, log *logrus.Logger) *PaymentRecorder {
	return &PaymentRecorder{store: store, sequencer: sequencer, notifier: notifier, log: log}
}

// RecordLedgerPayment applies a payment to a ledger entry: one transaction
// covering the guarded amount increment, the receipt number and the
// append-only event. The returned warning is non-empty when the receipt
// notification could not be delivered.
//
// Duplicate submissions are not deduplicated by amount or time; a client
// wanting at-most-once semantics passes its own referenceID, otherwise a
// fresh one is stamped and two submissions are two real payments.
func (r *PaymentRecorder) RecordLedgerPayment(entryID uint, amount float64, mode, remarks, referenceID string, notify bool) (*models.PaymentEvent, string, error) {
	if !models.IsValidPaymentMode(mode) {
		return nil, "", ErrInvalidMode
	}
	if referenceID == "" {
		referenceID = uuid.NewString()
	}

	var event models.PaymentEvent
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		entry, err := r.store.applyPayment(tx, entryID, amount)
		if err != nil {
			return err
		}

		receipt, err := r.sequencer.Issue(tx, ReceiptKindPayment)
		if err != nil {
			return err
		}

		eid := entry.ID
		cid := entry.CategoryID
		event = models.PaymentEvent{
			LedgerEntryID: &eid,
			StudentID:     entry.StudentID,
			CategoryID:    &cid,
			Amount:        amount,
			Mode:          mode,
			ReceiptNumber: receipt,
			ReferenceID:   referenceID,
			Remarks:       remarks,
			PaidAt:        time.Now(),
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, "", err
	}

	warning := ""
	if notify {
		warning = r.notify(&event)
	}
	return &event, warning, nil
}

// RecordStandaloneTransaction records an ad-hoc fee or fine payment that is
// not tied to a generated ledger line. No LedgerEntry is touched.
func (r *PaymentRecorder) RecordStandaloneTransaction(studentID, categoryID uint, amount float64, mode, remarks string, date time.Time) (*models.PaymentEvent, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidPaymentMode(mode) {
		return nil, ErrInvalidMode
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
	if !category.Active {
		return nil, ErrInactiveCategory
	}

	kind := ReceiptKindPayment
	if category.Kind == models.CategoryKindFine {
		kind = ReceiptKindFine
	}
	if date.IsZero() {
		date = time.Now()
	}

	var event models.PaymentEvent
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		receipt, err := r.sequencer.Issue(tx, kind)
		if err != nil {
			return err
		}
		catID := category.ID
		event = models.PaymentEvent{
			StudentID:     student.ID,
			CategoryID:    &catID,
			Amount:        amount,
			Mode:          mode,
			ReceiptNumber: receipt,
			ReferenceID:   uuid.NewString(),
			Remarks:       remarks,
			PaidAt:        date,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// notify delivers a receipt best-effort and reports failures as a warning
// message for the caller, never as an error.
func (r *PaymentRecorder) notify(event *models.PaymentEvent) string {
	if r.notifier == nil {
		return ""
	}
	var student models.Student
	if err := database.DB.First(&student, event.StudentID).Error; err != nil {
		r.log.WithError(err).Warn("receipt notification skipped: student lookup failed")
		return "payment recorded, receipt notification not sent"
	}
	if err := r.notifier.SendReceipt(&student, event); err != nil {
		r.log.WithError(err).WithField("receipt", event.ReceiptNumber).
			Warn("receipt notification failed")
		return "payment recorded, receipt notification not sent"
	}
	return ""
}
