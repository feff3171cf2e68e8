package matching

import "github.com/google/uuid"

// IDGenerator supplies order ids. Values must be unique across the book's
// lifetime; no ordering is implied.
type IDGenerator interface {
	NextID() OrderID
}

type uuidGenerator struct{}

func (uuidGenerator) NextID() OrderID { return OrderID(uuid.NewString()) }
