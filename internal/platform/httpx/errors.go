// Package httpx provides HTTP response utilities.
package httpx

import (
	"net/http"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// RespondError maps tagged domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	code := shared.CodeOf(err)
	switch shared.KindOf(err) {
	case shared.KindNotFound:
		Problem(w, http.StatusNotFound, "Not Found", code, shared.UserSafeMessage(err))
	case shared.KindValidation:
		Problem(w, http.StatusBadRequest, "Validation Failed", code, shared.UserSafeMessage(err))
	case shared.KindForbidden:
		Problem(w, http.StatusForbidden, "Forbidden", code, shared.UserSafeMessage(err))
	case shared.KindDatabase:
		Problem(w, http.StatusInternalServerError, "Internal Error", code, "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "INTERNAL_ERROR", "")
	}
}

// Unauthorized writes a 401 problem document.
func Unauthorized(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", detail)
}
