package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// APICallError represents a failed request to the model provider
type APICallError struct {
	Model string
	Cause error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("failed to generate content with %s: %v", e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ResponseError represents a response that arrived but cannot be used
type ResponseError struct {
	Message string
	Cause   error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unusable model response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("unusable model response: %s", e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether a generation error is worth retrying: rate limits, provider
// overload, server errors and timeouts. Cancellation and request errors are permanent.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return false
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return transientHTTP(code)
		}
		if s := apiErr.GRPCStatus(); s != nil {
			return transientCode(s.Code())
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return transientHTTP(gErr.Code)
	}

	if s, ok := status.FromError(err); ok {
		return transientCode(s.Code())
	}
	return false
}

func transientHTTP(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}

func transientCode(code codes.Code) bool {
	switch code {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal, codes.Aborted:
		return true
	default:
		return false
	}
}
