package rules

import "errors"

var ErrNotFound = errors.New("rule not found")
