package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// Meta list metadata
type Meta struct {
	Total int64 `json:"total"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success returns a successful JSON response
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMeta returns a successful JSON response with list metadata
func SuccessWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Created returns a 201 Created response
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}
	if err != nil {
		errInfo.Details = err.Error()
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   errInfo,
	})
}

// HandleServiceError maps the service error taxonomy onto HTTP responses
func HandleServiceError(c *gin.Context, err error) {
	var ve *ValidationError
	var ne *NoExportableDataError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Code:    "VALIDATION_ERROR",
				Message: ve.Message,
				Details: gin.H{"field": ve.Field},
			},
		})
	case errors.As(err, &ne):
		c.JSON(http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Code:    "NO_EXPORTABLE_DATA",
				Message: ErrNoExportableData.Error(),
				Details: gin.H{"excluded_count": ne.ExcludedCount},
			},
		})
	case errors.Is(err, ErrNoExportableData):
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrOpinionNotFound), errors.Is(err, ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrUserAlreadyExists):
		ErrorResponse(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInactiveUser), errors.Is(err, ErrUnauthorized):
		ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
	case IsQuery(err):
		ErrorResponse(c, http.StatusInternalServerError, "데이터 조회 중 오류가 발생했습니다", nil)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "요청 처리 중 오류가 발생했습니다", nil)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 422:
		return "NO_EXPORTABLE_DATA"
	case 429:
		return "TOO_MANY_REQUESTS"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
