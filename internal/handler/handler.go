// Package handler holds helpers shared by the console's HTTP handlers.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/internal/middleware"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/service/resource"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

// ListQuery is the query string of every table page: the current params,
// an optional table interaction and the loading flag.
type ListQuery struct {
	model.ListParams
	resource.Intent
	Loading bool `form:"loading"`
}

// HasIntent reports whether the request carries a table interaction.
func (q ListQuery) HasIntent() bool {
	return q.Kind != ""
}

func BindListQuery(c *gin.Context) (ListQuery, error) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, validator.BindError(err)
	}
	return q, nil
}

// ParseID reads a positive integer route parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest("invalid "+name, err)
	}
	return id, nil
}

// Operator returns the authenticated operator or an Unauthorized error.
func Operator(c *gin.Context) (*model.Operator, error) {
	op, ok := middleware.OperatorFrom(c)
	if !ok {
		return nil, apperrors.Unauthorized(nil)
	}
	return op, nil
}
