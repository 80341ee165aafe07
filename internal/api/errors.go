package api

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Error represents a non-2xx response from the backend API.
// The backend wraps failures in an {error: {code, message}} envelope;
// when that envelope is missing or malformed we fall back to a generic
// code so callers always get a typed error.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// errorEnvelope matches the backend's error response body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CheckResponse converts a non-success resty response into an *Error.
// Returns nil for 2xx responses.
func CheckResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &Error{
		StatusCode: resp.StatusCode(),
		Code:       "UNKNOWN_ERROR",
		Message:    fmt.Sprintf("API error: %d", resp.StatusCode()),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil {
		if envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
		}
		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
	}

	return apiErr
}
