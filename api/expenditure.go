package api

import (
	"strconv"
	"time"

	"feeledger/database"
	"feeledger/middleware"
	"feeledger/models"
	"feeledger/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExpenditureHandler struct {
	sequencer *service.ReceiptSequencer
}

func NewExpenditureHandler(sequencer *service.ReceiptSequencer) *ExpenditureHandler {
	return &ExpenditureHandler{sequencer: sequencer}
}

type ExpenditureRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required,min=1,max=50"`
	Description string  `json:"description" binding:"max=255"`
	Date        string  `json:"date" binding:"omitempty"` // 2006-01-02, defaults to today
}

// Create records an expenditure and stamps it with an EXP receipt number.
// @Summary Record expenditure
// @Tags expenditures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenditureRequest true "expenditure"
// @Success 200 {object} Response{data=models.ExpenditureRecord} "stored record with receipt number"
// @Failure 400 {object} Response "invalid amount or date"
// @Router /api/v1/expenditures [post]
func (h *ExpenditureHandler) Create(c *gin.Context) {
	var req ExpenditureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			BadRequest(c, "date must be formatted as 2006-01-02")
			return
		}
		date = parsed
	}

	record := models.ExpenditureRecord{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		AddedBy:     middleware.GetCurrentUsername(c),
	}

	// receipt allocation and insert share a transaction so an aborted insert
	// never burns a number
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		receipt, err := h.sequencer.Issue(tx, service.ReceiptKindExpenditure)
		if err != nil {
			return err
		}
		record.ReceiptNumber = receipt
		return tx.Create(&record).Error
	})
	if err != nil {
		respondServiceError(c, err, "failed to record expenditure")
		return
	}

	SuccessWithMessage(c, "expenditure recorded", record)
}

// List returns expenditures, newest first, with optional category and date
// range filters.
// @Summary List expenditures
// @Tags expenditures
// @Produce json
// @Security BearerAuth
// @Param category query string false "filter by category"
// @Param start_date query string false "inclusive lower bound, 2006-01-02"
// @Param end_date query string false "inclusive upper bound, 2006-01-02"
// @Param page query int false "page number" default(1)
// @Param page_size query int false "page size" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]models.ExpenditureRecord}} "expenditures"
// @Router /api/v1/expenditures [get]
func (h *ExpenditureHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	db := database.DB.Model(&models.ExpenditureRecord{})
	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}
	if start := c.Query("start_date"); start != "" {
		db = db.Where("date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		db = db.Where("date <= ?", end)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}

	var records []models.ExpenditureRecord
	if err := db.Order("date DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&records).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     records,
	})
}

// Delete soft-deletes an expenditure record. The receipt number stays
// reserved; the audit trail keeps the row.
// @Summary Delete expenditure
// @Tags expenditures
// @Produce json
// @Security BearerAuth
// @Param id path int true "expenditure id"
// @Success 200 {object} Response "deleted"
// @Failure 404 {object} Response "not found"
// @Router /api/v1/expenditures/{id} [delete]
func (h *ExpenditureHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid expenditure id")
		return
	}

	var record models.ExpenditureRecord
	if err := database.DB.First(&record, uint(id)).Error; err != nil {
		NotFound(c, "expenditure not found")
		return
	}
	if err := database.DB.Delete(&record).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "delete failed"))
		return
	}
	SuccessWithMessage(c, "expenditure deleted", nil)
}
