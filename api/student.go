package api

import (
	"strconv"
	"strings"

	"feeledger/database"
	"feeledger/models"

	"github.com/gin-gonic/gin"
)

// StudentHandler serves the roster. The ledger only reads it; roster edits
// happen here, bulk CSV import is handled outside this service.
type StudentHandler struct{}

func NewStudentHandler() *StudentHandler {
	return &StudentHandler{}
}

type StudentCreateRequest struct {
	PRN          string `json:"prn" binding:"required,min=1,max=30"`
	RollNo       int    `json:"roll_no" binding:"required,gt=0"`
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Class        string `json:"class" binding:"required,min=1,max=20"`
	Division     string `json:"division" binding:"required,min=1,max=10"`
	AcademicYear string `json:"academic_year" binding:"required,min=4,max=10"`
}

type StudentListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Class    string `form:"class"`
	Division string `form:"division"`
	Search   string `form:"search"` // name or PRN
}

// Create adds a student to the roster.
// @Summary Add student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StudentCreateRequest true "student"
// @Success 200 {object} Response{data=models.Student} "created"
// @Failure 400 {object} Response "duplicate PRN"
// @Router /api/v1/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req StudentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}
	req.PRN = strings.TrimSpace(req.PRN)

	var existing models.Student
	if err := database.DB.Where("prn = ?", req.PRN).First(&existing).Error; err == nil {
		BadRequest(c, "a student with this PRN already exists")
		return
	}

	student := models.Student{
		PRN:          req.PRN,
		RollNo:       req.RollNo,
		Name:         strings.TrimSpace(req.Name),
		Class:        strings.TrimSpace(req.Class),
		Division:     strings.TrimSpace(req.Division),
		AcademicYear: req.AcademicYear,
	}
	if err := database.DB.Create(&student).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "creating student failed"))
		return
	}
	SuccessWithMessage(c, "created", student)
}

// List returns roster pages filtered by class/division/search.
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Param class query string false "class filter"
// @Param division query string false "division filter"
// @Param search query string false "name or PRN"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Student}} "students"
// @Router /api/v1/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var req StudentListRequest
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

	query := database.DB.Model(&models.Student{})
	if req.Class != "" {
		query = query.Where("class = ?", req.Class)
	}
	if req.Division != "" {
		query = query.Where("division = ?", req.Division)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR prn LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var students []models.Student
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("class ASC, roll_no ASC").Offset(offset).Limit(req.PageSize).Find(&students).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     students,
	})
}

// Get returns one student by id.
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "student id"
// @Success 200 {object} Response{data=models.Student} "student"
// @Failure 404 {object} Response "unknown student"
// @Router /api/v1/students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		NotFound(c, "student not found")
		return
	}
	Success(c, student)
}
