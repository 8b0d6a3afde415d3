package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is an unexpected hashing, signing or programming failure.
	KindInternal Kind = iota
	// KindValidation is a missing or malformed required field.
	KindValidation
	// KindConflict is a duplicate identity.
	KindConflict
	// KindAuthentication covers bad credentials and missing, invalid or expired tokens.
	KindAuthentication
	// KindNotFound is a direct lookup that matched nothing.
	KindNotFound
	// KindStorage is an I/O failure from the persistence layer.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error is the single application error type.
// Two errors are considered equal by errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Code: e.Code, Err: cause}
}

var (
	// ErrMailExists is returned when a principal with the same email exists.
	ErrMailExists = &Error{Kind: KindConflict, Message: "Mail exists", Code: "MAIL_EXISTS"}
	// ErrAuthFailed is returned for any failed login, without saying which part failed.
	ErrAuthFailed = &Error{Kind: KindAuthentication, Message: "Auth failed", Code: "AUTH_FAILED"}
	// ErrMissingCredentials is returned when no bearer token was presented.
	ErrMissingCredentials = &Error{Kind: KindAuthentication, Message: "missing credentials", Code: "MISSING_CREDENTIALS"}
	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = &Error{Kind: KindAuthentication, Message: "token expired", Code: "TOKEN_EXPIRED"}
	// ErrInvalidSignature is returned when the token signature does not verify.
	ErrInvalidSignature = &Error{Kind: KindAuthentication, Message: "invalid token signature", Code: "INVALID_SIGNATURE"}
	// ErrMalformedToken is returned when the token cannot be parsed.
	ErrMalformedToken = &Error{Kind: KindAuthentication, Message: "malformed token", Code: "MALFORMED_TOKEN"}
	// ErrNotFound is returned by direct lookups that matched nothing.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "No valid entry found for provided ID", Code: "NOT_FOUND"}
	// ErrImmutableField is returned when a patch tries to rewrite a record's identity.
	ErrImmutableField = &Error{Kind: KindValidation, Message: "field cannot be modified", Code: "IMMUTABLE_FIELD"}
	// ErrStorage marks persistence failures.
	ErrStorage = &Error{Kind: KindStorage, Message: "storage failure", Code: "STORAGE_ERROR"}
	// ErrInternal marks unexpected failures.
	ErrInternal = &Error{Kind: KindInternal, Message: "internal failure", Code: "INTERNAL_ERROR"}
)

// Validation builds a validation error with a client-facing message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Code: "VALIDATION_ERROR"}
}

// Storage wraps a persistence failure. Nil stays nil.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return err
	}
	return ErrStorage.Wrap(err)
}

// Internal wraps an unexpected failure. Nil stays nil.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return ErrInternal.Wrap(err)
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Authentication failures share one message so callers cannot tell which check failed.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", ErrInternal.Code)
	}

	switch appErr.Kind {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, appErr.Message, appErr.Code)
	case KindConflict:
		return NewHTTPError(http.StatusConflict, appErr.Message, appErr.Code)
	case KindAuthentication:
		return NewHTTPError(http.StatusUnauthorized, ErrAuthFailed.Message, appErr.Code)
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, appErr.Message, appErr.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", appErr.Code)
	}
}
