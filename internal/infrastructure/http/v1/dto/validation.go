package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"factura/internal/core/apperror"
	"factura/internal/core/types"
)

var (
	registerOnce sync.Once
	registerErr  error

	lineIndexRE = regexp.MustCompile(`\.lines\[(\d+)\]\.`)
)

// RegisterValidators installs the custom binding tags on gin's validator:
//
//	decimal_gt0   decimal strictly positive
//	decimal_gte0  decimal zero or positive
//	percent       decimal within [0, 100]
//
// Field names in errors are the JSON names.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		// Decimals are validated through their string form.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		tags := map[string]validator.Func{
			"decimal_gt0":  decimalCheck(func(d decimal.Decimal) bool { return d.IsPositive() }),
			"decimal_gte0": decimalCheck(func(d decimal.Decimal) bool { return !d.IsNegative() }),
			"percent":      decimalCheck(types.IsPercent),
		}
		for tag, fn := range tags {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func decimalCheck(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return ok(d)
	}
}

var tagMessages = map[string]string{
	"required":     "is required",
	"uuid":         "must be a UUID",
	"decimal_gt0":  "must be greater than zero",
	"decimal_gte0": "must not be negative",
	"percent":      "must be between 0 and 100",
	"alpha":        "must contain letters only",
	"min":          "is too small",
	"max":          "is too large",
}

// TranslateBindingError converts a binding failure into an AppError.
// A failing field inside "lines" becomes INVALID_LINE_INPUT with the line
// index, anything else is a VALIDATION_ERROR.
func TranslateBindingError(err error, message string) *apperror.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewValidation(message).WithDetail("error", err.Error())
	}

	fe := verrs[0]
	text := fe.Field() + " " + fieldMessage(fe)

	if m := lineIndexRE.FindStringSubmatch(fe.Namespace() + "."); m != nil {
		appErr := apperror.NewInvalidLineInput(fe.Field(), text)
		if idx, convErr := strconv.Atoi(m[1]); convErr == nil {
			appErr.WithDetail("line", idx+1)
		}
		return appErr
	}

	return apperror.NewValidation(message).
		WithDetail("field", fe.Field()).
		WithDetail("error", text)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	return "failed on " + fe.Tag()
}
