package alarms

import "errors"

// ErrNotFound covers both a missing alarm and an already-acknowledged one.
// Callers are deliberately unable to tell the two apart.
var ErrNotFound = errors.New("alarm: not found")
