package appointment

import "errors"

// ErrInvalidStatus rejects a status outside the legal set before the update
// statement runs.
var ErrInvalidStatus = errors.New("invalid appointment status")
