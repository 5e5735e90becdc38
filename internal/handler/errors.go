package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/service"
	"go.uber.org/zap"
)

// respondError maps a service error onto the wire. Validation errors carry
// field detail, authentication failures stay generic, and anything
// unclassified is logged in full while the client sees a retry message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "invalid input",
			Details: validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPasswordAlreadySet):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: "resource not found",
		})
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "please try again later",
		})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}
