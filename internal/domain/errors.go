package domain

import "errors"

var (
	ErrFetch     = errors.New("rate fetch failed")
	ErrStorage   = errors.New("rate storage failed")
	ErrNotFound  = errors.New("rate not found")
	ErrIntegrity = errors.New("rate payload integrity check failed")
)
