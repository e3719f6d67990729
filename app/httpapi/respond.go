package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/MrMariodude/LibraCore/lending"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errMalformedBody = errors.New("malformed request body")

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func (a *API) decode(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return errors.Join(errMalformedBody, err)
	}

	return a.validate.Struct(target)
}

func (a *API) writeBadRequest(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' tag", fieldErr.Tag())
		}

		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: details})

		return
	}

	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// writeError maps a service error to its status code. Internal errors are logged, not exposed.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		a.logError(r.Context(), logMsgRequestFailed,
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrError, err.Error(),
		)

		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})

		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lending.ErrItemNotFound),
		errors.Is(err, lending.ErrLoanNotFound):
		return http.StatusNotFound

	case errors.Is(err, lending.ErrInvalidDueDate),
		errors.Is(err, lending.ErrInvalidTitle),
		errors.Is(err, lending.ErrInvalidAuthor),
		errors.Is(err, lending.ErrInvalidCopyCount),
		errors.Is(err, lending.ErrInvalidBorrower):
		return http.StatusUnprocessableEntity

	case errors.Is(err, lending.ErrNoCopiesAvailable),
		errors.Is(err, lending.ErrAlreadyReturned),
		errors.Is(err, lending.ErrAlreadyPendingPayment),
		errors.Is(err, lending.ErrNotPendingPayment),
		errors.Is(err, lending.ErrDuplicateTitle),
		errors.Is(err, lending.ErrItemHasLoans),
		errors.Is(err, lending.ErrCopiesOnLoan):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
