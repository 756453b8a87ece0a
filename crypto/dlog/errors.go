package dlog

import "fmt"

// ErrMaxLogExceeded is returned when the searched logarithm is not found
// within the requested bound.
var ErrMaxLogExceeded = fmt.Errorf("max log exceeded")

// ErrTableCorrupted is returned when a table entry matches neither the point
// nor its negation, which can only happen with corrupted precomputation.
var ErrTableCorrupted = fmt.Errorf("discrete log table corrupted")
