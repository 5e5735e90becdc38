package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/service"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only user mutations
type AdminHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// GetUser returns any user's profile
// @Summary Get a user (admin)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateRole changes a user's role
// @Summary Update a user's role (admin)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateRoleRequest true "Role update request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/role [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.adminService.UpdateRole(c.Request.Context(), c.Param("id"), domain.Role(req.Role)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Role updated successfully"})
}

// DeleteUser removes a user
// @Summary Delete a user (admin)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "User deleted successfully"})
}
