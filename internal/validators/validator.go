// Package validators wraps a process-wide go-playground validator with the
// domain tags used by request bodies and service inputs.
package validators

import (
	"net/http"
	"regexp"
	"sync"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	actionTagPattern = regexp.MustCompile(`^[a-z_]+\.[a-z_]+$`)
)

// Get returns the singleton validator, registering custom tags on first use.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, "action_tag", func(fl validator.FieldLevel) bool {
			return actionTagPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "subject_type", func(fl validator.FieldLevel) bool {
			return models.SubjectType(fl.Field().String()).Valid()
		})
		mustRegister(v, "visibility", func(fl validator.FieldLevel) bool {
			return models.Visibility(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Struct validates s against its validate tags
func Struct(s any) error {
	return Get().Struct(s)
}

// IsActionTag reports whether s is a namespaced domain.verb tag
func IsActionTag(s string) bool {
	return actionTagPattern.MatchString(s)
}

// EchoValidator adapts the singleton to echo.Validator so handlers can call c.Validate.
type EchoValidator struct {
	v *validator.Validate
}

func NewValidator() *EchoValidator {
	return &EchoValidator{v: Get()}
}

func (ev *EchoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
