package delivery

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Age is a pointer so that an explicit 0 is validated instead of being
// treated as absent.
type createUserRequest struct {
	Name  string `json:"name"  binding:"notblank"`
	Email string `json:"email" binding:"required,email"`
	Age   *int   `json:"age"   binding:"required,gt=0"`
}

type updateUserRequest struct {
	Name  string `json:"name"  binding:"omitempty,notblank"`
	Email string `json:"email" binding:"omitempty,email"`
	Age   *int   `json:"age"   binding:"omitempty,gt=0"`
}

// ageValue converts the wire value to the use case convention where 0 means not
// supplied.
func ageValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

var fieldMessages = map[string]string{
	"name.notblank":  "Name is required",
	"email.required": "Email is required",
	"email.email":    "Invalid email format",
	"age.required":   "Age is required",
	"age.gt":         "Age must be positive",
}

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the notblank rule to gin's validator and makes
// field errors report JSON field names.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unsupported binding validator engine %T", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			registerErr = fmt.Errorf("failed to register notblank validation: %w", err)
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return registerErr
}

// fieldErrors converts binding validation failures into a field -> message
// map. ok is false when err is not a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[field] = msg
	}
	return out, true
}
