package edgestore

import "errors"

// Sentinel errors for backing storage setup. Everything else the store can
// fail with wraps the underlying OS error with the failing path and size.
var (
	ErrZeroCapacity  = errors.New("edge capacity must be positive")
	ErrBackingExists = errors.New("backing file already exists")
)
