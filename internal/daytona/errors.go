package daytona

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = &APIError{StatusCode: 404, Message: "resource not found"}

	// ErrConflict is returned when a resource already exists.
	ErrConflict = &APIError{StatusCode: 409, Message: "resource already exists"}

	// ErrUnauthorized is returned when the API key is rejected.
	ErrUnauthorized = &APIError{StatusCode: 401, Message: "unauthorized"}

	// ErrForbidden is returned when the key lacks permission for the operation.
	ErrForbidden = &APIError{StatusCode: 403, Message: "forbidden"}
)

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("daytona api %d: %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("daytona api %d: %s", e.StatusCode, e.Message)
}

// Is matches on status code only.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// errorResponse covers both error shapes the API returns.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Err:        err,
		}
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		if errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the API rejected the key, either because it
// is invalid or because it lacks permission for the operation.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsConflict checks if an error reports a resource that already exists.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
