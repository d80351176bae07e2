package storage

import "errors"

// ErrTooLarge is returned by SaveStream when the input exceeds the limit.
var ErrTooLarge = errors.New("file exceeds size limit")
