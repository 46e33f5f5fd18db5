package api

import (
	"feeledger/config"
	"feeledger/database"
	"feeledger/middleware"
	"feeledger/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves operator registration and login.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest is the operator registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"clerk01"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"password123"`
	Email    string `json:"email" binding:"omitempty,email" example:"clerk@example.com"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"clerk01"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// Register creates an operator account.
// @Summary Register operator
// @Description Creates an operator account. New accounts start locked and must be activated before login.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "registration payload"
// @Success 200 {object} Response{data=models.User} "registered"
// @Failure 400 {object} Response "invalid payload or username taken"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	var existing models.User
	if err := database.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		BadRequest(c, "username already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "password hashing failed")
		return
	}

	user := models.User{
		Username: req.Username,
		Password: string(hashed),
		Email:    req.Email,
		Status:   models.UserStatusLocked,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "creating user failed"))
		return
	}

	SuccessWithMessage(c, "registered", user)
}

// Login authenticates an operator and returns a JWT.
// @Summary Operator login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} Response{data=LoginResponse} "logged in"
// @Failure 401 {object} Response "bad credentials"
// @Failure 403 {object} Response "account locked"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error; err != nil {
		Unauthorized(c, "invalid username or password")
		return
	}

	if user.Status != models.UserStatusActive {
		Forbidden(c, "account is locked, contact an administrator")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "invalid username or password")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "token generation failed")
		return
	}

	Success(c, LoginResponse{Token: token, UserInfo: user})
}

// GetProfile returns the authenticated operator.
// @Summary Current operator profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "profile"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}
	Success(c, user)
}

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50"`
}

// ChangePassword updates the operator's password.
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "passwords"
// @Success 200 {object} Response "changed"
// @Failure 400 {object} Response "wrong old password"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		BadRequest(c, "old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "password hashing failed")
		return
	}

	if err := database.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "updating password failed"))
		return
	}

	SuccessWithMessage(c, "password changed", nil)
}
