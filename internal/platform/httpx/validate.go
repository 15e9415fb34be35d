package httpx

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator for request DTOs.
type Validator struct {
	v *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates target and returns a field → message map when invalid.
func (v *Validator) Struct(target any) map[string]string {
	err := v.v.Struct(target)
	if err == nil {
		return nil
	}
	errs := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fieldErr := range fieldErrs {
			errs[fieldErr.Field()] = fieldErr.Tag()
		}
		return errs
	}
	errs["general"] = err.Error()
	return errs
}

// DecodeAndValidate decodes a JSON body and validates it. It writes a 400
// response and returns false when either step fails.
func (v *Validator) DecodeAndValidate(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := DecodeJSON(r, target); err != nil {
		Problem(w, http.StatusBadRequest, "Validation Failed", "INVALID_BODY", "request body is not valid JSON")
		return false
	}
	if errs := v.Struct(target); len(errs) > 0 {
		Problem(w, http.StatusBadRequest, "Validation Failed", "INVALID_FIELDS", describe(errs))
		return false
	}
	return true
}

func describe(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for field, tag := range errs {
		parts = append(parts, field+": "+tag)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
