package biz

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	ReasonInvalidArgument     = "INVALID_ARGUMENT"
	ReasonUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ReasonUnknownAlgorithm    = "UNKNOWN_ALGORITHM"
	ReasonUserNotFound        = "USER_NOT_FOUND"
	ReasonPostNotFound        = "POST_NOT_FOUND"

	// MetadataDetail is the error metadata key rendered as the "detail" field.
	MetadataDetail = "detail"
)

var (
	// ErrInvalidArgument is returned for malformed pagination, limits or ids.
	ErrInvalidArgument = errors.BadRequest(ReasonInvalidArgument, "invalid argument")
	// ErrUpstreamUnavailable is returned when the social graph cannot be read.
	ErrUpstreamUnavailable = errors.InternalServer(ReasonUpstreamUnavailable, "social graph unavailable")
	// ErrUnknownAlgorithm is returned for an algorithm tag with no registered recommender.
	ErrUnknownAlgorithm = errors.BadRequest(ReasonUnknownAlgorithm, "unknown recommendation algorithm")
	// ErrUserNotFound is user not found.
	ErrUserNotFound = errors.NotFound(ReasonUserNotFound, "user not found")
	// ErrPostNotFound is post not found.
	ErrPostNotFound = errors.NotFound(ReasonPostNotFound, "post not found")
)

func invalidArgument(format string, args ...any) *errors.Error {
	return errors.BadRequest(ReasonInvalidArgument, fmt.Sprintf(format, args...))
}

// storeError passes domain errors through and reports anything else as
// UPSTREAM_UNAVAILABLE with the store's text as detail.
func storeError(message string, err error) error {
	var se *errors.Error
	if errors.As(err, &se) {
		return err
	}
	return upstreamUnavailable(message, err)
}

// upstreamUnavailable keeps the accessor error as cause and exposes its text as detail.
func upstreamUnavailable(message string, cause error) *errors.Error {
	return errors.InternalServer(ReasonUpstreamUnavailable, message).
		WithCause(cause).
		WithMetadata(map[string]string{MetadataDetail: cause.Error()})
}
