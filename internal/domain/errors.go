package domain

import "errors"

// ErrInvalidToken marks a credential the verifier rejected, as opposed to an
// internal failure while verifying. The upgrade gate maps the former to 401
// and anything else to 500.
var ErrInvalidToken = errors.New("invalid token")
