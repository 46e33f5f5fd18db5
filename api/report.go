package api

import (
	"strconv"

	"feeledger/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reporter *service.Reporter
}

func NewReportHandler(reporter *service.Reporter) *ReportHandler {
	return &ReportHandler{reporter: reporter}
}

// ClassSummaries rolls the ledger up per class.
// @Summary Per-class collection summary
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param academic_year query string false "restrict to one academic year"
// @Param category_id query int false "restrict to one category"
// @Success 200 {object} Response{data=[]service.ClassSummary} "one row per class"
// @Router /api/v1/reports/classes [get]
func (h *ReportHandler) ClassSummaries(c *gin.Context) {
	filters := service.ClassSummaryFilters{
		AcademicYear: c.Query("academic_year"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			BadRequest(c, "invalid category_id")
			return
		}
		filters.CategoryID = uint(id)
	}

	summaries, err := h.reporter.ClassSummaries(filters)
	if err != nil {
		respondServiceError(c, err, "report query failed")
		return
	}
	Success(c, summaries)
}

// Dashboard returns income, expenditure, balance and the per-category
// breakdown of collected money.
// @Summary Financial dashboard totals
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.DashboardSummary} "totals and breakdown"
// @Router /api/v1/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.reporter.Dashboard()
	if err != nil {
		respondServiceError(c, err, "report query failed")
		return
	}
	Success(c, summary)
}
