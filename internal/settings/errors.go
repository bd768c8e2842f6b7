package settings

import "errors"

// ErrNotFound is returned by the indexing form of Get when the key is
// absent and no default value was supplied.
var ErrNotFound = errors.New("settings: key not found")

// ErrInvalidPath is returned when a write would have to descend through
// a non-mapping value to reach its destination.
var ErrInvalidPath = errors.New("settings: cannot descend into non-mapping path")

// ErrMalformedField is returned by MACBytes/IPBytes when the stored
// value does not parse as the expected wire format.
var ErrMalformedField = errors.New("settings: malformed field")
