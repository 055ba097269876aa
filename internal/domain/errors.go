package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrCaseClosed      = errors.New("case is closed")
	ErrTooManyTranches = errors.New("too many interest tranches")
	ErrLockHeld        = errors.New("lock already held")
	ErrContextDone     = errors.New("context cancelled")
	ErrEmptyAttachment = errors.New("attachment has no content")
)
