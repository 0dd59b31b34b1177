package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	ErrNoProfile = errors.New("no profile for subject")
	ErrForbidden = errors.New("forbidden")
)
