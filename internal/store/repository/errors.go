package repository

import "errors"

// ErrNotFound is returned when a lookup has no row. Callers treat it as "no data".
var ErrNotFound = errors.New("not found")
