// Package services holds the domain rules: activity aggregation, visibility,
// notification dispatch, sharing and video enrichment.
package services

import (
	"errors"
	"time"
)

var (
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrInvalidAction     = errors.New("invalid action tag")
	ErrInvalidSubject    = errors.New("invalid subject reference")
	ErrInvalidInput      = errors.New("invalid input")
	ErrShareExpired      = errors.New("share has expired")
	ErrSelfAction        = errors.New("users cannot do this to themselves")
	ErrAlreadyExists     = errors.New("already exists")
	ErrForbidden         = errors.New("not allowed")
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time
