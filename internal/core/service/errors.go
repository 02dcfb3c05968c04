package service

import "errors"

var (
	ErrStockNotFound     = errors.New("stock not found")
	ErrInvalidBaseline   = errors.New("invalid initial stock")
	ErrLimitExceeded     = errors.New("remaining stock would exceed initial stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLockUnavailable   = errors.New("stock lock unavailable")
	ErrDependencyFailure = errors.New("dependency failure")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)
