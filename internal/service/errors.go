package service

import "errors"

// Error kinds. Every service error wraps exactly one of these, and the
// transport maps the kind to a status code.
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication error")
	ErrNotFound       = errors.New("not found")
	ErrUpstream       = errors.New("upstream error")
)

// Error is a client-safe failure: Message may be rendered as is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation
var (
	ErrMissingFields          = newError(ErrValidation, "All fields are required")
	ErrMissingCredentials     = newError(ErrValidation, "username or email is required")
	ErrAvatarRequired         = newError(ErrValidation, "Avatar file is required")
	ErrCoverImageRequired     = newError(ErrValidation, "Cover image file is missing")
	ErrPasswordFieldsRequired = newError(ErrValidation, "Old and new password are required")
	ErrInvalidOldPassword     = newError(ErrValidation, "Invalid old password")
	ErrNoFieldsToUpdate       = newError(ErrValidation, "At least one of fullname or email is required")
	ErrUsernameMissing        = newError(ErrValidation, "username is missing")
	ErrSelfSubscription       = newError(ErrValidation, "You cannot subscribe to your own channel")
)

// Conflict
var (
	ErrUserExists = newError(ErrConflict, "User with email or username already exists")
	ErrEmailTaken = newError(ErrConflict, "Email is already in use")
)

// Authentication
var (
	ErrUnauthorized        = newError(ErrAuthentication, "Unauthorized request")
	ErrInvalidAccessToken  = newError(ErrAuthentication, "Invalid access token")
	ErrInvalidCredentials  = newError(ErrAuthentication, "Invalid user credentials")
	ErrRefreshTokenMissing = newError(ErrAuthentication, "Unauthorized request")
	ErrRefreshTokenInvalid = newError(ErrAuthentication, "Invalid refresh token")
	ErrRefreshTokenUsed    = newError(ErrAuthentication, "Refresh token is expired or used")
)

// Not found
var (
	ErrUserNotFound    = newError(ErrNotFound, "User does not exist")
	ErrChannelNotFound = newError(ErrNotFound, "Channel does not exist")
	ErrVideoNotFound   = newError(ErrNotFound, "Video does not exist")
)

// Upstream
var (
	ErrUploadFailed = newError(ErrUpstream, "Error while uploading file")
)
