package protocol

import (
	"errors"
)

// ErrInvalidConfig indicates the compiler configuration is internally
// inconsistent (non-positive capacity, undefined reagent in the order
// list, and so on).
var ErrInvalidConfig = errors.New("invalid configuration")
