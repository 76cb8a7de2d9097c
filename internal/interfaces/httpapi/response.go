package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "n17-dash"

	internalErrorMessage = "internal server error"
)

// envelope follows the Google JSON style guide: data on success, error
// otherwise, never both.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

// errorTable is checked in order; the first sentinel found in the chain wins.
var errorTable = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "ALREADY_EXISTS"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{usecase.ErrExtractionFailed, mappedError{http.StatusBadGateway, "extractionFailed", "UNAVAILABLE"}},
	{context.Canceled, mappedError{http.StatusServiceUnavailable, "requestCancelled", "CANCELLED"}},
	{context.DeadlineExceeded, mappedError{http.StatusServiceUnavailable, "requestCancelled", "CANCELLED"}},
}

func mapError(err error) mappedError {
	for _, entry := range errorTable {
		if errors.Is(err, entry.target) {
			return entry.mapped
		}
	}
	return internalError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError maps err onto the envelope. Unmapped errors are reported as a
// generic internal error and the detail is recorded on the span only.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	message := err.Error()
	if mapped == internalError {
		recordSpanError(ctx, err)
		message = internalErrorMessage
	}
	writeStatus(w, mapped, message)
}

func writeInternalError(w http.ResponseWriter) {
	writeStatus(w, internalError, internalErrorMessage)
}

func writeStatus(w http.ResponseWriter, mapped mappedError, message string) {
	writeJSON(w, mapped.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: message}},
		},
	})
}
