// Package handler exposes the warehouse services over HTTP.
package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/infrastructure/logger"
	"github.com/erp/warehouse/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requestIDKey is where logger.GinMiddleware stores the request id
const requestIDKey = "request_id"

func init() {
	// Binding errors name fields by their JSON key
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// withWarnings copies the warnings raised while serving the request into resp
func withWarnings(c *gin.Context, resp dto.Response) dto.Response {
	resp.Warnings = appjournal.WarningsFrom(c.Request.Context()).List()
	return resp
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, withWarnings(c, dto.NewSuccessResponse(data)))
}

// SuccessList sends a page of results
func (h *BaseHandler) SuccessList(c *gin.Context, data any, count, page, pageSize int) {
	c.JSON(http.StatusOK, withWarnings(c, dto.NewListResponse(data, count, page, pageSize)))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, withWarnings(c, dto.NewSuccessResponse(data)))
}

// NoContent sends a 204 no content response, or a 200 envelope when there are warnings to report
func (h *BaseHandler) NoContent(c *gin.Context) {
	if resp := withWarnings(c, dto.NewSuccessResponse(nil)); len(resp.Warnings) > 0 {
		c.JSON(http.StatusOK, resp)
		return
	}
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, info *dto.ErrorInfo) {
	info.RequestID = getRequestID(c)
	c.AbortWithStatusJSON(statusCode, dto.Response{Success: false, Error: info})
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, &dto.ErrorInfo{Code: dto.ErrCodeBadRequest, Message: message})
}

// BindingError reports a request that failed to decode or validate. Field errors are listed
// by their JSON path.
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		h.BadRequest(c, "Malformed request: "+err.Error())
		return
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe)] = fe.Tag()
	}
	h.Error(c, http.StatusBadRequest, &dto.ErrorInfo{
		Code:    dto.ErrCodeBadRequest,
		Message: "Request validation failed",
		Details: details,
	})
}

// fieldPath drops the top-level struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// HandleError converts service errors to HTTP responses. Store failures are logged with
// their cause since the response omits it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, info := dto.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context(), zap.NewNop()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	h.Error(c, status, info)
}

// pathID parses the :id path parameter, answering 400 when it is not a UUID
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

// bindList reads paging parameters from the query string
func (h *BaseHandler) bindList(c *gin.Context) (dto.ListRequest, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return req, false
	}
	return req, true
}
