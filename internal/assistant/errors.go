package assistant

import (
	"errors"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// FailureKind classifies a failed remote call.
type FailureKind int

const (
	// FailureConnection means the remote could not be reached at all.
	FailureConnection FailureKind = iota
	// FailureRateLimited means the remote answered with a 429 status.
	FailureRateLimited
	// FailureStatus means the remote answered with any other non-success status.
	FailureStatus
)

// classify maps an OpenAI client error to exactly one failure kind.
func classify(err error) FailureKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return FailureRateLimited
		}
		return FailureStatus
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return FailureRateLimited
		}
		return FailureStatus
	}
	return FailureConnection
}

// guard executes a remote call and translates any failure into a logged,
// classified outcome. On success it returns the result unchanged and true;
// on failure it logs one line naming the failure kind and returns the zero
// value and false. It never lets a remote error escape to the caller.
func guard[T any](op string, fn func() (T, error)) (T, bool) {
	result, err := fn()
	if err == nil {
		return result, true
	}

	switch classify(err) {
	case FailureRateLimited:
		log.Printf("%s: a 429 status code was received; backing off: %v", op, err)
	case FailureStatus:
		log.Printf("%s: a non-success status code was received: %v", op, err)
	default:
		log.Printf("%s: the server could not be reached: %v", op, err)
	}

	var zero T
	return zero, false
}
