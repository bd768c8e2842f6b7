package driver

import "errors"

// ErrDriverNotFound is returned by Build when no factory is registered for
// the requested brand.
var ErrDriverNotFound = errors.New("no driver registered for brand")
