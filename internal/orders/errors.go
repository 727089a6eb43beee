package orders

import "errors"

// ErrNotFound is returned when no order matches the requested ID.
var ErrNotFound = errors.New("order not found")
