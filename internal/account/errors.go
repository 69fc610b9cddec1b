package account

import "errors"

var (
	ErrNotFound  = errors.New("account not found")
	ErrNameEmpty = errors.New("account name cannot be empty or whitespace-only")
	ErrNameTaken = errors.New("account name already exists")
)
