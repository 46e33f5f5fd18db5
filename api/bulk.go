package api

import (
	"feeledger/database"
	"feeledger/middleware"
	"feeledger/models"
	"feeledger/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// BulkHandler fronts the bulk lifecycle manager. Deletion is the most
// destructive operation in the system, so it re-verifies the operator's
// password and only then hands the manager an authorization capability.
type BulkHandler struct {
	manager *service.BulkManager
}

func NewBulkHandler(manager *service.BulkManager) *BulkHandler {
	return &BulkHandler{manager: manager}
}

// GenerateRequest creates ledger entries for a cohort.
type GenerateRequest struct {
	CategoryID   uint     `json:"category_id" binding:"required"`
	Classes      []string `json:"classes" binding:"required,min=1"`
	AcademicYear string   `json:"academic_year" binding:"required,min=4,max=10"`
	Amount       float64  `json:"amount" binding:"omitempty,gt=0"` // 0 uses the category default
}

// BulkDeleteRequest removes a cohort's ledger entries.
type BulkDeleteRequest struct {
	CategoryID          uint   `json:"category_id" binding:"required"`
	Class               string `json:"class" binding:"required"`
	IncludeWithPayments bool   `json:"include_with_payments"`
	// Password is re-verified before anything is deleted.
	Password string `json:"password" binding:"required"`
}

// Generate creates one ledger entry per student for every requested class.
// Students already holding an entry for the (category, year) key are
// skipped, so the job is safely re-runnable.
// @Summary Generate cohort ledger entries
// @Tags bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateRequest true "generation job"
// @Success 200 {object} Response{data=service.GenerateResult} "per-class outcome counts"
// @Failure 400 {object} Response "invalid amount or empty class list"
// @Failure 404 {object} Response "unknown category"
// @Router /api/v1/bulk/generate [post]
func (h *BulkHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	result, err := h.manager.Generate(req.CategoryID, req.Classes, req.AcademicYear, req.Amount)
	if err != nil {
		respondServiceError(c, err, "generation failed")
		return
	}
	SuccessWithMessage(c, "generation completed", result)
}

// BulkDelete removes all entries for (category, class). Entries with
// recorded payments survive unless include_with_payments is set, in which
// case their payment events are removed and counted.
// @Summary Bulk delete cohort entries
// @Tags bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "deletion job, password re-verified"
// @Success 200 {object} Response{data=service.BulkDeleteResult} "deletion counts"
// @Failure 401 {object} Response "wrong password"
// @Failure 403 {object} Response "missing authorization"
// @Router /api/v1/bulk/delete [post]
func (h *BulkHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	// destructive path: re-verify the operator's password and convert it
	// into an explicit capability
	userID := middleware.GetCurrentUserID(c)
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		Unauthorized(c, "operator not found")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "password verification failed")
		return
	}

	result, err := h.manager.BulkDelete(service.Authorization{OperatorID: user.ID}, req.CategoryID, req.Class, req.IncludeWithPayments)
	if err != nil {
		respondServiceError(c, err, "bulk delete failed")
		return
	}
	SuccessWithMessage(c, "bulk delete completed", result)
}

// DeletableOptions lists the class/category values that currently hold
// entries, so the caller cannot target an empty selection.
// @Summary List deletable options
// @Tags bulk
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.DeletableOptions} "options"
// @Router /api/v1/bulk/deletable-options [get]
func (h *BulkHandler) DeletableOptions(c *gin.Context) {
	opts, err := h.manager.ListDeletableOptions()
	if err != nil {
		respondServiceError(c, err, "query failed")
		return
	}
	Success(c, opts)
}
