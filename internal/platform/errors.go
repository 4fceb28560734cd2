package platform

import "errors"

// ErrNotInDirectory is returned when a toggle targets an ID that is not in
// the cached directory view (stale UI state or a bad request).
var ErrNotInDirectory = errors.New("platform: not in directory")
