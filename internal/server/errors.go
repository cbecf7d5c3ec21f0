package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	receiptdomain "github.com/fiscalware/fiscalway/internal/receipt/domain"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
	subscriptiondomain "github.com/fiscalware/fiscalway/internal/subscription/domain"
	taxpayerdomain "github.com/fiscalware/fiscalway/internal/taxpayer/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: strings.ReplaceAll(code, "_", " "),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: rootError(err).Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isStateChangedError(err):
		// The close attempt mutated device state (FiscalDayCloseFailed); the
		// caller must know a plain retry is the correct recovery.
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "fiscal_day_close_failed",
			Message: rootError(err).Error(),
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, taxpayerdomain.ErrInvalidID),
		errors.Is(err, taxpayerdomain.ErrInvalidTIN),
		errors.Is(err, taxpayerdomain.ErrInvalidName),
		errors.Is(err, taxpayerdomain.ErrInvalidAddress),
		errors.Is(err, taxpayerdomain.ErrInvalidStatus),
		errors.Is(err, subdomaindomain.ErrInvalidSubdomain),
		errors.Is(err, subdomaindomain.ErrInvalidTaxpayer),
		errors.Is(err, subscriptiondomain.ErrInvalidTaxpayer),
		errors.Is(err, subscriptiondomain.ErrInvalidPlan),
		errors.Is(err, subscriptiondomain.ErrPaymentRequired),
		errors.Is(err, devicedomain.ErrInvalidTaxpayer),
		errors.Is(err, devicedomain.ErrInvalidSerialNo),
		errors.Is(err, devicedomain.ErrInvalidDeviceID),
		errors.Is(err, devicedomain.ErrInvalidActivation),
		errors.Is(err, fiscaldomain.ErrInvalidCounter),
		errors.Is(err, fiscaldomain.ErrUnknownCounterType),
		errors.Is(err, receiptdomain.ErrInvalidType),
		errors.Is(err, receiptdomain.ErrInvalidCurrency),
		errors.Is(err, receiptdomain.ErrInvalidInvoice),
		errors.Is(err, receiptdomain.ErrNoLines),
		errors.Is(err, receiptdomain.ErrInvalidTotal),
		errors.Is(err, receiptdomain.ErrInvalidTaxpayer):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, taxpayerdomain.ErrTINExists),
		errors.Is(err, subdomaindomain.ErrSubdomainTaken),
		errors.Is(err, subscriptiondomain.ErrActiveSubscription),
		errors.Is(err, subscriptiondomain.ErrAlreadyInactive),
		errors.Is(err, devicedomain.ErrDeviceExists),
		errors.Is(err, fiscaldomain.ErrInvalidTransition),
		errors.Is(err, fiscaldomain.ErrConcurrentTransition),
		errors.Is(err, receiptdomain.ErrDayNotOpen):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, taxpayerdomain.ErrNotFound),
		errors.Is(err, subdomaindomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, devicedomain.ErrNotFound),
		errors.Is(err, fiscaldomain.ErrDeviceNotFound),
		errors.Is(err, receiptdomain.ErrNotFound),
		errors.Is(err, receiptdomain.ErrDeviceNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// isStateChangedError marks failures that left the device in
// FiscalDayCloseFailed or broke signing mid-submission.
func isStateChangedError(err error) bool {
	switch {
	case errors.Is(err, fiscaldomain.ErrAggregation),
		errors.Is(err, fiscaldomain.ErrSigning),
		errors.Is(err, fiscaldomain.ErrMissingPrivateKey),
		errors.Is(err, receiptdomain.ErrSigning):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	return rootError(err).Error()
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return "request"
}

func rootError(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case asValidationErrors(err) != nil:
		return "validation_error", "invalid_request"
	case isValidationError(err):
		return "validation_error", validationErrorCode(err)
	case isConflictError(err):
		return "conflict", rootError(err).Error()
	case isNotFoundError(err):
		return "not_found", rootError(err).Error()
	case isStateChangedError(err):
		return "fiscal_day_close_failed", rootError(err).Error()
	default:
		return "internal_error", "internal_error"
	}
}
