package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyWallet    contextKey = "wallet"
)

// ResponseEnvelope wraps all API responses
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse provides detailed error information
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

var validate = validator.New()

// writeResponse writes a success envelope
func writeResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	envelope := ResponseEnvelope{
		Success: true,
		Data:    data,
		Meta: ResponseMeta{
			RequestID: requestIDFromContext(r),
			Timestamp: time.Now().UTC(),
		},
	}
	writeJSON(w, r, status, envelope)
}

// writeError maps application errors onto the HTTP surface. AppError status
// codes drive the response status; anything else is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := "INTERNAL_ERROR"
	message := "An internal error occurred"

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	envelope := ResponseEnvelope{
		Success: false,
		Error: &ErrorResponse{
			Code:    code,
			Message: message,
		},
		Meta: ResponseMeta{
			RequestID: requestIDFromContext(r),
			Timestamp: time.Now().UTC(),
		},
	}
	writeJSON(w, r, domainErrors.GetStatusCode(err), envelope)
}

// writeValidationError reports field-level request validation failures as 400
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	fields := map[string][]string{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			fields[fe.Field()] = append(fields[fe.Field()], fe.Tag())
		}
	}

	envelope := ResponseEnvelope{
		Success: false,
		Error: &ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "Request validation failed",
			Fields:  fields,
		},
		Meta: ResponseMeta{
			RequestID: requestIDFromContext(r),
			Timestamp: time.Now().UTC(),
		},
	}
	writeJSON(w, r, http.StatusBadRequest, envelope)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// decodeAndValidate parses a JSON body into dst and runs struct validation
func decodeAndValidate(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := decoder.Decode(dst); err != nil {
		return domainErrors.NewValidationError("MALFORMED_BODY", "request body is not valid JSON")
	}
	return validate.Struct(dst)
}

func requestIDFromContext(r *http.Request) string {
	if id, ok := r.Context().Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func walletFromContext(r *http.Request) string {
	if wallet, ok := r.Context().Value(contextKeyWallet).(string); ok {
		return wallet
	}
	return ""
}
