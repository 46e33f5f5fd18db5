package api

import (
	"strconv"
	"time"

	"feeledger/database"
	"feeledger/models"
	"feeledger/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler is the HTTP face of the payment recorder.
type PaymentHandler struct {
	recorder *service.PaymentRecorder
}

func NewPaymentHandler(recorder *service.PaymentRecorder) *PaymentHandler {
	return &PaymentHandler{recorder: recorder}
}

// RecordPaymentRequest applies a payment to a ledger entry.
type RecordPaymentRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"500"`
	Mode        string  `json:"mode" binding:"required" example:"cash"`
	Remarks     string  `json:"remarks" example:"first installment"`
	ReferenceID string  `json:"reference_id" example:""` // optional idempotency handle
	Notify      bool    `json:"notify"`
}

// StandaloneTransactionRequest records an ad-hoc fee/fine payment.
type StandaloneTransactionRequest struct {
	StudentID  uint    `json:"student_id" binding:"required"`
	CategoryID uint    `json:"category_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Mode       string  `json:"mode" binding:"required"`
	Remarks    string  `json:"remarks"`
	Date       string  `json:"date" example:"2024-07-15"` // defaults to today
}

// PaymentListRequest filters the payment event history.
type PaymentListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	StudentID uint   `form:"student_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// RecordPayment applies a payment to one ledger entry.
// @Summary Record ledger payment
// @Description Applies a payment, issues a receipt number and appends a payment event. A failed receipt notification is returned as a warning, never as an error.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "entry id"
// @Param request body RecordPaymentRequest true "payment"
// @Success 200 {object} Response{data=models.PaymentEvent} "recorded"
// @Failure 400 {object} Response "invalid amount or overpayment"
// @Failure 404 {object} Response "unknown entry"
// @Router /api/v1/entries/{id}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	event, warning, err := h.recorder.RecordLedgerPayment(uint(id), req.Amount, req.Mode, req.Remarks, req.ReferenceID, req.Notify)
	if err != nil {
		respondServiceError(c, err, "recording payment failed")
		return
	}
	if warning != "" {
		SuccessWithWarning(c, "payment recorded", warning, event)
		return
	}
	SuccessWithMessage(c, "payment recorded", event)
}

// RecordStandalone records an ad-hoc fee or fine transaction not tied to a
// generated ledger line.
// @Summary Record standalone transaction
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StandaloneTransactionRequest true "transaction"
// @Success 200 {object} Response{data=models.PaymentEvent} "recorded"
// @Failure 400 {object} Response "invalid amount or mode"
// @Failure 404 {object} Response "unknown student or category"
// @Router /api/v1/transactions [post]
func (h *PaymentHandler) RecordStandalone(c *gin.Context) {
	var req StandaloneTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			BadRequest(c, "date must be formatted as 2006-01-02")
			return
		}
		date = parsed
	}

	event, err := h.recorder.RecordStandaloneTransaction(req.StudentID, req.CategoryID, req.Amount, req.Mode, req.Remarks, date)
	if err != nil {
		respondServiceError(c, err, "recording transaction failed")
		return
	}
	SuccessWithMessage(c, "transaction recorded", event)
}

// List returns payment event history pages. Events are append-only, so this
// listing is the audit trail.
// @Summary List payment events
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Param student_id query int false "student filter"
// @Param start_date query string false "start date (2024-01-01)"
// @Param end_date query string false "end date (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.PaymentEvent}} "events"
// @Router /api/v1/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var req PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 200 {
		req.PageSize = 200
	}

	query := database.DB.Model(&models.PaymentEvent{})
	if req.StudentID != 0 {
		query = query.Where("student_id = ?", req.StudentID)
	}
	if req.StartDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local); err == nil {
			query = query.Where("paid_at >= ?", t)
		}
	}
	if req.EndDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local); err == nil {
			// include the end date itself
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("paid_at <= ?", t)
		}
	}

	var total int64
	query.Count(&total)

	var events []models.PaymentEvent
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Student").Order("paid_at DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&events).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     events,
	})
}
