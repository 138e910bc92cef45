// Package validator adapts gin's go-playground validator to the console's
// error responses.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
)

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "is too short",
	"max":      "is too long",
	"oneof":    "must be one of",
	"gte":      "is too small",
	"lte":      "is too large",
}

var once sync.Once

// Register makes validation errors report the name the client sent: the
// form tag for query binding, else the json tag.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// BindError converts a gin binding error into a BadRequest AppError with a
// readable message, e.g. "email must be a valid email".
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.BadRequest("invalid request", err)
	}

	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", e.Tag())
		}
		if e.Param() != "" && e.Tag() == "oneof" {
			msg = fmt.Sprintf("%s %s", msg, e.Param())
		}
		parts = append(parts, fmt.Sprintf("%s %s", e.Field(), msg))
	}
	return apperrors.BadRequest(strings.Join(parts, "; "), err)
}
