package database

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrBinHasNoLocation = errors.New("bin must have latitude and longitude coordinates")
	ErrInvalidState     = errors.New("record is not in a state that allows this change")
	ErrDuplicate        = errors.New("record already exists")
)
