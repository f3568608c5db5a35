package errors

import "errors"

var (
	// ErrInvalidArgument is returned for caller-level misuse, e.g. an empty
	// block list handed to the pipeline.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrGenerationTimeout marks a drafter call that exceeded its bound.
	ErrGenerationTimeout = errors.New("generation timeout")
	// ErrMalformedOutput marks generator output that could not be parsed as
	// a scene draft.
	ErrMalformedOutput = errors.New("malformed generation output")
	// ErrServiceUnavailable marks a generation service that refused or
	// failed the call outright.
	ErrServiceUnavailable = errors.New("generation service unavailable")
	// ErrExhaustedRetries marks a block whose attempt budget ran out. It is
	// absorbed into a fallback scene, never surfaced to the pipeline caller.
	ErrExhaustedRetries = errors.New("retries exhausted")
	// ErrCriticalGateFailure marks a quality gate failure that invalidates
	// the whole sequence rather than one scene.
	ErrCriticalGateFailure = errors.New("critical quality gate failed")
)
