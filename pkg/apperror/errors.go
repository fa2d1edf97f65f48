package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// IsCode reports whether err is (or wraps) an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Error codes referenced across packages.
const (
	CodeValidation        = "VAL_001"
	CodeInvalidSignature  = "SEC_001"
	CodeDuplicateCheckout = "PAY_001"
	CodeDuplicateWebhook  = "HOOK_001"
	CodeNotFound          = "RES_001"
	CodeGateway           = "GW_001"
	CodeInternal          = "SYS_001"
)

// ---- Validation (VAL) ----

// Validation returns a 400 error for malformed or out-of-range input.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ValidationField returns a 400 error naming the first violated field.
func ValidationField(field, reason string) *AppError {
	return New(CodeValidation, fmt.Sprintf("invalid %s: %s", field, reason), http.StatusBadRequest)
}

// ---- Webhook authentication (SEC) ----

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid webhook signature", http.StatusUnauthorized)
}

// ---- Checkout & reconciliation (PAY / HOOK / RES) ----

func ErrDuplicateCheckout() *AppError {
	return New(CodeDuplicateCheckout, "Duplicate checkout session", http.StatusConflict)
}

// ErrDuplicateWebhook marks a delivery whose webhook id is already recorded.
// The reconciler resolves it to success: this is the idempotency mechanism,
// not a failure.
func ErrDuplicateWebhook() *AppError {
	return New(CodeDuplicateWebhook, "Webhook event already processed", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Provider gateway (GW) ----

func ErrGatewayUnavailable(err error) *AppError {
	return Wrap(CodeGateway, "Payment provider unavailable", http.StatusBadGateway, err)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an unclassified persistence or runtime failure.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
