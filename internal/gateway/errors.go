package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/omergehad405/EduMaster/internal/failure"
)

// RemoteError is a non-2xx answer from the API.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is maps the status onto the error taxonomy. A 401 means the credential
// was rejected.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case failure.ErrRemote:
		return true
	case failure.ErrAuthRequired:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// UserMessage returns the server's message for display.
func (e *RemoteError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status == http.StatusUnauthorized {
		return "Your session has expired. Please log in again."
	}
	return "Something went wrong on the server. Please try again."
}

// Temporary reports whether a read may be retried.
func (e *RemoteError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// UnavailableError indicates the API could not be reached.
type UnavailableError struct {
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: server unavailable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: server unavailable", e.Op)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == failure.ErrRemote }

func (e *UnavailableError) UserMessage() string {
	return "Cannot reach the EduMaster server. Check your connection and try again."
}

// InvalidPayloadError indicates a 2xx response whose body does not have
// the expected shape.
type InvalidPayloadError struct {
	Op      string
	Content json.RawMessage
	Err     error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *InvalidPayloadError) Unwrap() error { return e.Err }

func (e *InvalidPayloadError) Is(target error) bool { return target == failure.ErrDataIntegrity }

var errMissingID = errors.New("missing _id")

// errorBody is the API's error envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func remoteError(op string, status int, body []byte) *RemoteError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	return &RemoteError{Op: op, Status: status, Message: msg}
}

// retryable reports whether a failed read is worth another attempt.
func retryable(err error) bool {
	if errors.Is(err, failure.ErrAuthRequired) {
		return false
	}
	var unavail *UnavailableError
	if errors.As(err, &unavail) {
		return true
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Temporary()
	}
	return false
}
