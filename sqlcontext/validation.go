package sqlcontext

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/store"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func optionsValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
			return store.IsIdentifier(fl.Field().String())
		})
		_ = v.RegisterValidation("dialect", func(fl validator.FieldLevel) bool {
			return dbcontext.Dialect(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// validateOptions checks Options and reports every failing field in one error.
func validateOptions(opts *Options) error {
	err := optionsValidator().Struct(opts)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid options: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid options: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_without":
		return fmt.Sprintf("%s is required unless %s is set", fe.Field(), fe.Param())
	case "dialect":
		return fmt.Sprintf("%s %q is not supported (postgres, mysql, sqlite3)", fe.Field(), fe.Value())
	case "sqlident":
		return fmt.Sprintf("%s %q must start with a letter and contain only letters, numbers, and underscores", fe.Field(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
