package transaction

import "errors"

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrAccountNotFound = errors.New("account not found")
)
