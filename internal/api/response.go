package api

import (
	"errors"
	"net/http"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error payload returned by every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is the generic success payload.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondError maps application errors onto HTTP statuses.
func respondError(c *gin.Context, code string, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), ErrorResponse{
			Code:    code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
