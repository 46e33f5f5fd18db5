package api

import (
	"strconv"

	"feeledger/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the fee register.
type LedgerHandler struct {
	store *service.LedgerStore
}

func NewLedgerHandler(store *service.LedgerStore) *LedgerHandler {
	return &LedgerHandler{store: store}
}

// LedgerListRequest filters the register listing.
type LedgerListRequest struct {
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	Class        string `form:"class"`
	Division     string `form:"division"`
	CategoryID   uint   `form:"category_id"`
	AcademicYear string `form:"academic_year"`
	Status       string `form:"status"` // unpaid / partial / paid
	Search       string `form:"search"`
	Sort         string `form:"sort"` // roll / name / pending / created
}

// List returns a register page plus a summary computed over the filtered
// set, so the totals always match the visible rows.
// @Summary List ledger entries
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Param class query string false "class filter"
// @Param division query string false "division filter"
// @Param category_id query int false "category filter"
// @Param academic_year query string false "academic year filter"
// @Param status query string false "unpaid / partial / paid"
// @Param search query string false "student name or PRN"
// @Param sort query string false "roll / name / pending / created"
// @Success 200 {object} Response{data=service.LedgerPage} "entries with summary"
// @Router /api/v1/entries [get]
func (h *LedgerHandler) List(c *gin.Context) {
	var req LedgerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	page, err := h.store.Query(service.LedgerQuery{
		Class:        req.Class,
		Division:     req.Division,
		CategoryID:   req.CategoryID,
		AcademicYear: req.AcademicYear,
		Status:       req.Status,
		Search:       req.Search,
		Sort:         req.Sort,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		respondServiceError(c, err, "query failed")
		return
	}
	Success(c, page)
}

// Get returns one ledger entry.
// @Summary Get ledger entry
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param id path int true "entry id"
// @Success 200 {object} Response "entry"
// @Failure 404 {object} Response "unknown entry"
// @Router /api/v1/entries/{id} [get]
func (h *LedgerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	entry, err := h.store.Get(uint(id))
	if err != nil {
		respondServiceError(c, err, "query failed")
		return
	}
	Success(c, entry)
}

// Delete removes one ledger entry. Entries with recorded payments are
// refused unless force=true, which also removes their payment events.
// @Summary Delete ledger entry
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param id path int true "entry id"
// @Param force query bool false "cascade payment events" default(false)
// @Success 200 {object} Response "deleted"
// @Failure 400 {object} Response "entry has payments"
// @Failure 404 {object} Response "unknown entry"
// @Router /api/v1/entries/{id} [delete]
func (h *LedgerHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	removed, err := h.store.Delete(uint(id), force)
	if err != nil {
		respondServiceError(c, err, "deleting entry failed")
		return
	}
	SuccessWithMessage(c, "deleted", gin.H{"payments_removed": removed})
}
