package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jawat-my/saferoute/constants"
)

// ============================================================================
// STANDARDIZED ERROR HELPERS
// ============================================================================

// ErrorWrapper provides standardized error handling patterns
type ErrorWrapper struct {
	context string
}

// NewErrorWrapper creates a new error wrapper with context
func NewErrorWrapper(context string) *ErrorWrapper {
	return &ErrorWrapper{context: context}
}

// Wrapf wraps an error with context and formatting
func (e *ErrorWrapper) Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return Errorf("%s: %s: %w", e.context, message, err)
}

// Failf creates a new error with context and formatting
func (e *ErrorWrapper) Failf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return Errorf("%s: %s", e.context, message)
}

// ============================================================================
// STANDARDIZED JSON HELPERS
// ============================================================================

// JSONResult represents the result of a JSON operation
type JSONResult struct {
	Data []byte
	Err  error
}

// MarshalJSON marshals data to JSON with error handling
func MarshalJSON(v any) JSONResult {
	data, err := json.Marshal(v)
	return JSONResult{Data: data, Err: err}
}

// MarshalJSONIndent marshals data to pretty JSON with error handling
func MarshalJSONIndent(v any, indent string) JSONResult {
	if indent == "" {
		indent = constants.JSONIndent
	}
	data, err := json.MarshalIndent(v, "", indent)
	return JSONResult{Data: data, Err: err}
}

// MustMarshalJSON marshals to JSON and panics on error (for testing)
func MustMarshalJSON(v any) []byte {
	result := MarshalJSON(v)
	if result.Err != nil {
		panic(result.Err)
	}
	return result.Data
}

// ============================================================================
// STANDARDIZED HTTP HELPERS
// ============================================================================

// WriteHTTPJSON writes a JSON response with proper headers
func WriteHTTPJSON(w http.ResponseWriter, v any) error {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)

	result := MarshalJSON(v)
	if result.Err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(constants.InternalErrorBody)); werr != nil {
			Error(constants.LogWriteFailed, werr)
		}
		return result.Err
	}

	if _, err := w.Write(result.Data); err != nil {
		Error(constants.LogWriteFailed, err)
	}
	return nil
}

// ============================================================================
// STANDARDIZED VALIDATION HELPERS
// ============================================================================

// ValidateRequired checks if required fields are present
func ValidateRequired(fieldName string, value any) error {
	if value == nil {
		return Errorf("required field '%s' is missing", fieldName)
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return Errorf("required field '%s' cannot be empty", fieldName)
		}
	case []any:
		if len(v) == 0 {
			return Errorf("required field '%s' cannot be empty", fieldName)
		}
	case map[string]any:
		if len(v) == 0 {
			return Errorf("required field '%s' cannot be empty", fieldName)
		}
	}

	return nil
}

// ============================================================================
// STANDARDIZED SAFE TYPE ASSERTION HELPERS
// ============================================================================

// SafeStringAssert safely asserts a value to string
func SafeStringAssert(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// SafeMapAssert safely asserts a value to map[string]any
func SafeMapAssert(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// SafeSliceAssert safely asserts a value to []any
func SafeSliceAssert(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}
