package matching

import "errors"

var (
	ErrInsufficientQty  = errors.New("fill quantity exceeds remaining quantity")
	ErrInvalidPrice     = errors.New("invalid order price")
	ErrInvalidQty       = errors.New("invalid order quantity")
	ErrInvalidSide      = errors.New("invalid order side")
	ErrInvalidOrderType = errors.New("invalid order type")
)
