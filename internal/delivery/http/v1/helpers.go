package v1

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
	"go-jobswipe-backend/pkg/validation"
)

func currentUser(c *gin.Context) (userID, role string) {
	return c.GetString(string(domain.KeyUserID)), c.GetString(string(domain.KeyUserRole))
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid " + label))
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates the body, rendering validator errors with friendly labels.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.Error(apperror.BadRequest(validation.Summary(err)))
		} else {
			c.Error(apperror.BadRequest("Invalid request body"))
		}
		return false
	}
	return true
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func pageParams(c *gin.Context) (int, int) {
	var q pageQuery
	_ = c.ShouldBindQuery(&q)
	return q.Page, q.PageSize
}
