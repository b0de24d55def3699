package reputation

import "errors"

var (
	// ErrDisabled is returned when the client has no endpoint.
	ErrDisabled = errors.New("reputation lookup disabled: no endpoint configured")

	// ErrUnexpectedStatus is returned for any HTTP status other than 200.
	ErrUnexpectedStatus = errors.New("unexpected reputation service status")

	// ErrInvalidResponse is returned when the body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid reputation service response")

	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("reputation service circuit open")

	// errCallerDone marks a lookup aborted by the caller's context.
	errCallerDone = errors.New("lookup abandoned by caller")
)
