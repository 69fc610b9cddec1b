package ratefeed

import "errors"

var ErrNotCached = errors.New("quote not cached")
