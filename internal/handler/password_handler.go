package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/service"
	"go.uber.org/zap"
)

// forgotMessage is the single response body for forgot-password requests,
// identical whether or not the email exists.
const forgotMessage = "If this email exists, a code was sent"

// PasswordHandler handles the OTP-backed credential lifecycle
type PasswordHandler struct {
	passwordService service.PasswordService
	logger          *zap.Logger
}

// NewPasswordHandler creates a new password handler
func NewPasswordHandler(passwordService service.PasswordService, logger *zap.Logger) *PasswordHandler {
	return &PasswordHandler{
		passwordService: passwordService,
		logger:          logger,
	}
}

// Forgot requests a password reset code
// @Summary Request a password reset code
// @Tags password
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/password/forgot [post]
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.passwordService.Forgot(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: forgotMessage})
}

// VerifyOTP verifies a code and returns the opaque handle
// @Summary Verify a one-time code
// @Tags password
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Verify OTP request"
// @Success 200 {object} dto.VerifyOTPResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password/verify-otp [post]
func (h *PasswordHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	otpID, err := h.passwordService.VerifyOTP(c.Request.Context(), req.Email, req.OTP, req.Type)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyOTPResponse{OTPID: otpID})
}

// Reset completes a password reset with a verified OTP handle
// @Summary Reset password
// @Tags password
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password/reset [post]
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.passwordService.Reset(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password updated successfully"})
}

// Change replaces the password of the authenticated user
// @Summary Change password
// @Tags password
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password/change [post]
func (h *PasswordHandler) Change(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.passwordService.Change(c.Request.Context(), userID.(string), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password updated successfully"})
}

// Set gives an OAuth-only account its first password
// @Summary Set initial password
// @Tags password
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SetPasswordRequest true "Set password request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/password/set [post]
func (h *PasswordHandler) Set(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	var req dto.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.passwordService.Set(c.Request.Context(), userID.(string), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password set successfully"})
}
