package domain

import "errors"

// User invariants enforced by the persistence hooks
var (
	ErrAvatarRequired   = errors.New("avatar is required")
	ErrPasswordRequired = errors.New("password is required")
)

// Subscription invariants
var (
	ErrSelfSubscription = errors.New("cannot subscribe to own channel")
)
