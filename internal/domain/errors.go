package domain

import "errors"

// Sentinel errors forming the failure taxonomy surfaced to callers. Backend
// failures are mapped onto these in exactly one place (the backend package);
// everything above matches with errors.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrUnknown          = errors.New("unexpected error")
)

// ErrorKind is the classified failure category of an error.
type ErrorKind string

const (
	KindPermissionDenied ErrorKind = "permission_denied"
	KindValidation       ErrorKind = "validation_error"
	KindConflict         ErrorKind = "conflict"
	KindNotFound         ErrorKind = "not_found"
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindUnknown          ErrorKind = "unknown"
)

// ClassifyError maps any error onto the taxonomy. Unrecognized errors are
// reported as KindUnknown rather than guessed at.
func ClassifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindUnknown
	}
}

// UserMessage returns an actionable, user-facing message for a classified
// failure, without leaking backend details.
func UserMessage(err error) string {
	switch ClassifyError(err) {
	case KindPermissionDenied:
		return "You don't have permission to perform this action."
	case KindValidation:
		return "Some fields are missing or invalid. Please review and try again."
	case KindConflict:
		return "This member already exists or was changed by someone else."
	case KindNotFound:
		return "The requested member or workspace no longer exists."
	case KindUnauthenticated:
		return "Your session has expired. Please sign in again."
	default:
		return "Something went wrong. Please try again."
	}
}
