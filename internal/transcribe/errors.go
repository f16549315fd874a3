package transcribe

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed remote transcription call. Callers match on
// kind rather than inspecting message strings.
type ErrorKind int

const (
	// KindAuth: the credential was rejected (401/403). Short-circuits a
	// chunked run; the same key would be rejected for every segment.
	KindAuth ErrorKind = iota
	// KindRateLimit: the API refused the upload with 429.
	KindRateLimit
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork
	// KindService: any other non-2xx response.
	KindService
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindNetwork:
		return "network"
	case KindService:
		return "service"
	}
	return "unknown"
}

// RemoteError is a failed call to the transcription API.
type RemoteError struct {
	Kind       ErrorKind
	StatusCode int // 0 for network errors
	Message    string
	cause      error
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transcription API %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transcription API %s error: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.cause }

// IsAuth reports whether err is a credential rejection.
func IsAuth(err error) bool { return kindOf(err) == KindAuth }

// IsRateLimit reports whether err is an API rate-limit refusal.
func IsRateLimit(err error) bool { return kindOf(err) == KindRateLimit }

func kindOf(err error) ErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrorKind(-1)
}
