package api

import (
	"strconv"
	"strings"

	"feeledger/database"
	"feeledger/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler manages the obligation category registry.
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

type CategoryCreateRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=100"`
	Kind          string  `json:"kind" binding:"required"` // fee / fine
	DefaultAmount float64 `json:"default_amount" binding:"omitempty,gt=0"`
}

type CategoryUpdateRequest struct {
	Name          string   `json:"name" binding:"omitempty,min=1,max=100"`
	DefaultAmount *float64 `json:"default_amount" binding:"omitempty,gt=0"`
	Active        *bool    `json:"active"`
}

// List returns categories, optionally filtered by kind or active flag.
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param kind query string false "fee or fine"
// @Param active query bool false "filter by active flag"
// @Success 200 {object} Response{data=[]models.Category} "categories"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Category{})
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if active := c.Query("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err == nil {
			query = query.Where("active = ?", v)
		}
	}

	var list []models.Category
	if err := query.Order("kind ASC, name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}
	Success(c, list)
}

// Create adds a category.
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "category"
// @Success 200 {object} Response{data=models.Category} "created"
// @Failure 400 {object} Response "invalid kind or duplicate name"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "name must not be empty")
		return
	}
	if !models.IsValidCategoryKind(req.Kind) {
		BadRequest(c, "kind must be fee or fine")
		return
	}

	var existing models.Category
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		BadRequest(c, "category name already exists")
		return
	}

	category := models.Category{
		Name:          req.Name,
		Kind:          req.Kind,
		DefaultAmount: req.DefaultAmount,
		Active:        true,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "creating category failed"))
		return
	}
	SuccessWithMessage(c, "created", category)
}

// Update changes a category's name, default amount or active flag.
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Param request body CategoryUpdateRequest true "fields to change"
// @Success 200 {object} Response{data=models.Category} "updated"
// @Failure 404 {object} Response "unknown category"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		NotFound(c, "category not found")
		return
	}

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.DefaultAmount != nil {
		updates["default_amount"] = *req.DefaultAmount
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		Success(c, category)
		return
	}

	if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "updating category failed"))
		return
	}

	database.DB.First(&category, category.ID)
	SuccessWithMessage(c, "updated", category)
}

// Delete removes a category. A category still referenced by ledger entries
// or payment events is deactivated instead of removed, so history keeps its
// labels.
// @Summary Delete or deactivate category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response "deleted or deactivated"
// @Failure 404 {object} Response "unknown category"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		NotFound(c, "category not found")
		return
	}

	var entries int64
	database.DB.Model(&models.LedgerEntry{}).Where("category_id = ?", category.ID).Count(&entries)
	var events int64
	database.DB.Model(&models.PaymentEvent{}).Where("category_id = ?", category.ID).Count(&events)

	if entries > 0 || events > 0 {
		if err := database.DB.Model(&category).Update("active", false).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "deactivating category failed"))
			return
		}
		SuccessWithMessage(c, "category is referenced and was deactivated", nil)
		return
	}

	if err := database.DB.Delete(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "deleting category failed"))
		return
	}
	SuccessWithMessage(c, "deleted", nil)
}
