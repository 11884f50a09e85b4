package patient

import "errors"

// ErrSearchTermMissing rejects a search with no term before any connection
// is borrowed. Not-found outcomes are not errors here; the procedures report
// them inside their result envelopes.
var ErrSearchTermMissing = errors.New("search term required")
