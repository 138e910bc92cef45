package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

type loginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Tab      string `form:"tab" binding:"omitempty,oneof=all unread read"`
}

func TestBindError_ValidationMessages(t *testing.T) {
	Register()

	err := binding.Validator.ValidateStruct(&loginForm{Email: "nope", Password: "short", Tab: "x"})
	got := BindError(err)

	appErr, ok := apperrors.As(got)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, "email must be a valid email; password is too short; tab must be one of all unread read", appErr.Message)
}

func TestBindError_Other(t *testing.T) {
	got := BindError(errors.New("unexpected EOF"))
	assert.True(t, apperrors.IsCode(got, apperrors.ErrBadRequest))
}

type listQuery struct {
	Dir    string `json:"direction" form:"sort_dir" binding:"omitempty,oneof=asc desc"`
	Search string `json:"search_term" form:"search" binding:"max=3"`
}

func TestBindError_PrefersQueryName(t *testing.T) {
	Register()

	err := binding.Validator.ValidateStruct(&listQuery{Dir: "sideways", Search: "toolong"})
	got := BindError(err)

	appErr, ok := apperrors.As(got)
	assert.True(t, ok)
	assert.Equal(t, "sort_dir must be one of asc desc; search is too long", appErr.Message)
	assert.NotContains(t, appErr.Message, "direction")
}
