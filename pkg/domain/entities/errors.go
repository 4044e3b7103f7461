package entities

import "errors"

var (
	ErrEmptyCode           = errors.New("code cannot be empty")
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrMaterialNotFound    = errors.New("material not found")
	ErrBOMLineNotFound     = errors.New("bom line not found")
	ErrDuplicateBOMLine    = errors.New("bom line already exists")
)
