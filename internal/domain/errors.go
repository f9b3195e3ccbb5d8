package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInsufficientHistory = errors.New("insufficient history")
)
