package oms

import "errors"

var (
	errDuplicateOrder     = errors.New("duplicate order")
	errOrderIDNotFound    = errors.New("orderID not found")
	errGatewayIDNotFound  = errors.New("gatewayID not found")
	errInvalidOrderStatus = errors.New("invalid order status")
	errInvalidOrderPrice  = errors.New("order price is not a tick multiple")
	errInvalidOrderQty    = errors.New("order quantity must be a positive integer")
)
