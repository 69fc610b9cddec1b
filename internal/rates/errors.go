package rates

import "errors"

var ErrNotFound = errors.New("custom rate not found")
