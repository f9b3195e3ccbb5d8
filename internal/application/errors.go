package application

import "pricewatch-service/internal/domain"

var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidPrice = domain.ErrInvalidPrice
)
