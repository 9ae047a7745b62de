package domain

import "time"

// Search defaults
const (
	DefaultSearchDebounce = 400 * time.Millisecond
	DefaultMinTermLength  = 3
)

// DefaultAddQuantity is used when AddItem is given a zero quantity.
const DefaultAddQuantity = 1
