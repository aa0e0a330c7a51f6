// Package errs defines the typed error kinds returned by every stage of the
// feedback pipeline. Stages only ever return *Error values; the HTTP layer is
// the single place that turns a Kind into a status code and JSON envelope.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure.
type Kind string

const (
	KindUnsupportedContentType Kind = "UNSUPPORTED_CONTENT_TYPE"
	KindMalformedBody          Kind = "MALFORMED_BODY"
	KindInvalidInput           Kind = "INVALID_INPUT"
	KindMissingChallengeToken  Kind = "MISSING_CHALLENGE_TOKEN"
	KindChallengeRejected      Kind = "CHALLENGE_REJECTED"
	KindChallengeService       Kind = "CHALLENGE_SERVICE_ERROR"
	KindStorage                Kind = "STORAGE_ERROR"
	KindMethodNotAllowed       Kind = "METHOD_NOT_ALLOWED"
	KindInternal               Kind = "INTERNAL"
)

type kindInfo struct {
	status  int
	message string
}

var kinds = map[Kind]kindInfo{
	KindUnsupportedContentType: {http.StatusUnsupportedMediaType, "Unsupported content type"},
	KindMalformedBody:          {http.StatusBadRequest, "Invalid body"},
	KindInvalidInput:           {http.StatusBadRequest, "Invalid input"},
	KindMissingChallengeToken:  {http.StatusBadRequest, "Missing Turnstile token"},
	KindChallengeRejected:      {http.StatusBadRequest, "Turnstile verification failed"},
	KindChallengeService:       {http.StatusBadGateway, "Turnstile verification error"},
	KindStorage:                {http.StatusInternalServerError, "Storage error"},
	KindMethodNotAllowed:       {http.StatusMethodNotAllowed, "Method not allowed"},
	KindInternal:               {http.StatusInternalServerError, "Internal server error"},
}

// Status returns the HTTP status code for the kind. Unknown kinds map to 500.
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for the kind.
func (k Kind) Message() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[KindInternal].message
}

// Error is a failure of a known kind. Details are safe to expose to clients;
// Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind with optional details.
func New(kind Kind, details ...string) *Error {
	return &Error{Kind: kind, Details: details}
}

// Wrap creates an Error of the given kind around a cause.
func Wrap(kind Kind, err error, details ...string) *Error {
	return &Error{Kind: kind, Details: details, Err: err}
}

// From returns err as an *Error. Anything that is not already typed is
// treated as an unanticipated internal failure whose message becomes the
// single detail.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternal, err, err.Error())
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
