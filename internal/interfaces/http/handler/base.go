// Package handler contains the HTTP handlers for the API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides shared response and error handling for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success writes a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithWarning writes a 200 response with data and a non-fatal warning
func (h *BaseHandler) SuccessWithWarning(c *gin.Context, data interface{}, warning string) {
	if warning == "" {
		h.Success(c, data)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithWarning(data, warning))
}

// SuccessWithMeta writes a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// HandleError maps domain errors onto the HTTP error contract:
// validation 400, conflict 409, not found 404, persistence 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, dto.NewFieldErrorResponse(dto.ErrCodeValidation, ve.Field, ve.Message))
		return
	}

	var ce *shared.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, dto.NewErrorResponse(dto.ErrCodeConflict, ce.Message))
		return
	}

	if errors.Is(err, shared.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Resource not found"))
		return
	}

	var pe *shared.PersistenceError
	if errors.As(err, &pe) {
		h.logger.Error("persistence failure",
			zap.String("path", c.Request.URL.Path),
			zap.String("op", pe.Op),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodePersistence, "A storage error occurred"))
		return
	}

	var de *shared.DomainError
	if errors.As(err, &de) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(de.Code, de.Message))
		return
	}

	h.logger.Error("unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "An internal error occurred"))
}

// getTenantID resolves the tenant for the request. Writes a 400 response and
// returns false when the tenant is missing.
func (h *BaseHandler) getTenantID(c *gin.Context) (uuid.UUID, bool) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		h.BadRequest(c, "tenant could not be determined")
		return uuid.Nil, false
	}
	return tenantID, true
}

// getUserID resolves the authenticated user for the request. Writes a 401
// response and returns false when no user is present.
func (h *BaseHandler) getUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetJWTUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "authentication required"))
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a UUID path parameter. Writes a 400 response and
// returns false on malformed input.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
