package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "gripulse/internal/errors"
	"gripulse/pkg/contracts/domain"
)

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("indicator", isIndicatorKey)
	v.RegisterValidation("year", isReportingYear)
	v.RegisterValidation("filename", isValidFilename)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  10 * 1024 * 1024,
	}
}

// ValidateRequest rejects oversized or malformed JSON bodies before the
// handler binds them.
func (m *ValidationMiddleware) ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.maxBodySize {
			m.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{
					"max_size": m.maxBodySize,
					"size":     r.ContentLength,
				},
			))
			return
		}

		// Only JSON bodies get a structural check; uploads pass through.
		if r.Body != nil && r.ContentLength > 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			body, err := io.ReadAll(io.LimitReader(r.Body, m.maxBodySize))
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to read request body",
					slog.String("error", err.Error()))
				m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 && !json.Valid(body) {
				m.errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					"INVALID_JSON",
					"Request body contains invalid JSON",
				))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateStruct validates a struct and returns a field-level error list
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	if err := m.validator.Struct(v); err != nil {
		var details []apierrors.ValidationError
		for _, fe := range err.(validator.ValidationErrors) {
			details = append(details, apierrors.ValidationError{
				Field:   fe.Field(),
				Message: m.formatValidationError(fe),
			})
		}
		return apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Request validation failed",
			details,
		)
	}
	return nil
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Replace(param, " ", ", ", -1))
	case "indicator":
		return fmt.Sprintf("%s must be a known indicator key", field)
	case "year":
		return fmt.Sprintf("%s must be a four-digit reporting year", field)
	case "filename":
		return fmt.Sprintf("%s must be a plain filename", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// Custom validators

func isIndicatorKey(fl validator.FieldLevel) bool {
	return domain.ValidIndicatorKey(fl.Field().String())
}

func isReportingYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= 1900 && year <= 2100
}

// isValidFilename rejects path separators to block directory traversal
func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" || len(filename) > 255 {
		return false
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return false
	}
	return true
}
