// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package mlclient

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned for every scoring failure: timeout, transport
// error, non-2xx status, a response that fails the schema, an empty list,
// an open circuit breaker or a shed request. Match with errors.Is.
var ErrUnavailable = errors.New("ml scoring service unavailable")

// Failure reasons, exposed through Reason for logging and metrics.
const (
	ReasonTimeout         = "timeout"
	ReasonCanceled        = "canceled"
	ReasonTransport       = "transport"
	ReasonStatus          = "status"
	ReasonInvalidResponse = "invalid_response"
	ReasonEmpty           = "empty"
	ReasonBreakerOpen     = "breaker_open"
	ReasonRateLimited     = "rate_limited"
)

// unavailableError carries the reason and the underlying cause while still
// matching ErrUnavailable.
type unavailableError struct {
	reason string
	cause  error
}

func (e *unavailableError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", ErrUnavailable, e.reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrUnavailable, e.reason, e.cause)
}

func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *unavailableError) Unwrap() error { return e.cause }

func unavailable(reason string, cause error) error {
	return &unavailableError{reason: reason, cause: cause}
}

// Reason returns the failure reason of an ErrUnavailable error, or
// "unavailable" when err carries none.
func Reason(err error) string {
	var ue *unavailableError
	if errors.As(err, &ue) {
		return ue.reason
	}
	return "unavailable"
}
