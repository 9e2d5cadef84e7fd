package buffer

import "errors"

// ErrUnknownPolicy is returned by [ParsePolicy] for an unrecognized policy
// name. Match with [errors.Is].
var ErrUnknownPolicy = errors.New("buffer: unknown policy")
