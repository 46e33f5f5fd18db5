package service

import (
	"math"

	"feeledger/database"
	"feeledger/models"
)

// Reporter answers read-only aggregation queries. It owns no invariants
// beyond correct arithmetic; all numbers derive from the per-entry state the
// store maintains.
type Reporter struct{}

func NewReporter() *Reporter {
	return &Reporter{}
}

// ClassSummary is the per-class rollup of the ledger.
type ClassSummary struct {
	Class          string  `json:"class"`
	StudentCount   int64   `json:"student_count"`
	FullyPaid      int64   `json:"fully_paid"`
	PartiallyPaid  int64   `json:"partially_paid"`
	Unpaid         int64   `json:"unpaid"`
	TotalCollected float64 `json:"total_collected"`
	TotalPending   float64 `json:"total_pending"`
}

// ClassSummaryFilters narrows the rollup to one year and/or category.
type ClassSummaryFilters struct {
	AcademicYear string
	CategoryID   uint
}

// ClassSummaries rolls the ledger up per class in one grouped query, so the
// numbers are consistent with a single point-in-time read.
func (r *Reporter) ClassSummaries(f ClassSummaryFilters) ([]ClassSummary, error) {
	db := database.DB.Model(&models.LedgerEntry{}).
		Joins("JOIN students ON students.id = ledger_entries.student_id").
		Select("students.class AS class, " +
			"COUNT(DISTINCT ledger_entries.student_id) AS student_count, " +
			"SUM(CASE WHEN ledger_entries.status = 'paid' THEN 1 ELSE 0 END) AS fully_paid, " +
			"SUM(CASE WHEN ledger_entries.status = 'partial' THEN 1 ELSE 0 END) AS partially_paid, " +
			"SUM(CASE WHEN ledger_entries.status = 'unpaid' THEN 1 ELSE 0 END) AS unpaid, " +
			"COALESCE(SUM(ledger_entries.paid_amount), 0) AS total_collected, " +
			"COALESCE(SUM(ledger_entries.total_amount - ledger_entries.paid_amount), 0) AS total_pending").
		Group("students.class").
		Order("students.class")
	if f.AcademicYear != "" {
		db = db.Where("ledger_entries.academic_year = ?", f.AcademicYear)
	}
	if f.CategoryID != 0 {
		db = db.Where("ledger_entries.category_id = ?", f.CategoryID)
	}

	var summaries []ClassSummary
	if err := db.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// CategoryShare is one slice of the expenditure breakdown.
type CategoryShare struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// DashboardSummary is the institution-level money overview.
type DashboardSummary struct {
	TotalIncome      float64         `json:"total_income"`
	TotalExpenditure float64         `json:"total_expenditure"`
	Balance          float64         `json:"balance"`
	Breakdown        []CategoryShare `json:"expenditure_breakdown"`
}

// Dashboard computes income, expenditure and the category breakdown of
// expenditure. With zero expenditure all percentages are 0, never NaN.
func (r *Reporter) Dashboard() (*DashboardSummary, error) {
	var totalIncome float64
	if err := database.DB.Model(&models.PaymentEvent{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalIncome).Error; err != nil {
		return nil, err
	}

	var totalExpenditure float64
	if err := database.DB.Model(&models.ExpenditureRecord{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalExpenditure).Error; err != nil {
		return nil, err
	}

	var breakdown []CategoryShare
	if err := database.DB.Model(&models.ExpenditureRecord{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Group("category").
		Order("total DESC").
		Scan(&breakdown).Error; err != nil {
		return nil, err
	}
	for i := range breakdown {
		if totalExpenditure > 0 {
			breakdown[i].Percentage = math.Round(breakdown[i].Total/totalExpenditure*10000) / 100
		} else {
			breakdown[i].Percentage = 0
		}
	}

	return &DashboardSummary{
		TotalIncome:      totalIncome,
		TotalExpenditure: totalExpenditure,
		Balance:          totalIncome - totalExpenditure,
		Breakdown:        breakdown,
	}, nil
}
