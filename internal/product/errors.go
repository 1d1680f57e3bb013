package product

import "errors"

var (
	ErrNotFound       = errors.New("product not found")
	ErrProductIDTaken = errors.New("product id already exists")
	ErrMissingField   = errors.New("missing required field")
)
