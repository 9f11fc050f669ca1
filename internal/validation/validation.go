package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the struct tags of v and reports the first failing field
// as a domain validation error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldName(fe), message(fe)))
	}
	sort.Strings(msgs)
	return domain.NewValidationError(fieldName(fieldErrs[0]), strings.Join(msgs, "; "))
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("minimum is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum is %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "nefield":
		return fmt.Sprintf("must differ from %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", fe.Param())
	case "dive":
		return "invalid element"
	default:
		return fmt.Sprintf("invalid %s", fe.Field())
	}
}
