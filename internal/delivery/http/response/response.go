package response

import (
	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/domain"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope(c, true, message, data, nil))
}

// Error sends an error response. detail is optional structured context, never raw internals.
func Error(c *gin.Context, code int, message string, detail any) {
	c.JSON(code, envelope(c, false, message, nil, detail))
}

func envelope(c *gin.Context, ok bool, message string, data, detail any) Response {
	return Response{
		Success:   ok,
		Message:   message,
		Data:      data,
		Error:     detail,
		RequestID: c.GetString(string(domain.KeyRequestID)),
	}
}
