// Package apperr defines the closed set of domain error kinds and their
// wire codes. Services raise these at the point of detection; only the HTTP
// boundary translates them to status codes.
package apperr

import "errors"

// Kind is the stable wire identifier of a domain failure.
type Kind string

const (
	LoginFailed             Kind = "LOGIN_FAILED"
	Unauthorized            Kind = "UNAUTHORIZED"
	UserNotFound            Kind = "USER_NOT_FOUND"
	EmailAlreadyExist       Kind = "EMAIL_ALREADY_EXIST"
	SessionNotFound         Kind = "USER_TOKEN_NOT_FOUND"
	GroupNotFound           Kind = "GROUP_NOT_FOUND"
	EventNotFound           Kind = "EVENT_NOT_FOUND"
	StandNotFound           Kind = "STAND_NOT_FOUND"
	StandCategoryNotFound   Kind = "STAND_CATEGORY_NOT_FOUND"
	ProductNotFound         Kind = "PRODUCT_NOT_FOUND"
	ProductCategoryNotFound Kind = "PRODUCT_CATEGORY_NOT_FOUND"
	ProductFileNotFound     Kind = "PRODUCT_FILE_NOT_FOUND"
	InvalidDate             Kind = "INVALID_DATE"
)

// Error is a terminal, non-retryable domain failure.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string { return string(e.Kind) }

// Is lets errors.Is match two domain errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New returns the error value for a kind.
func New(kind Kind) error { return &Error{Kind: kind} }

// KindOf extracts the kind from err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
