package matching

// Command is the closed input vocabulary of the book. The set of variants is
// fixed; the engine switches over it exhaustively.
type Command interface {
	isCommand()
}

type NewCommand struct {
	Type  OrderType
	Side  Side
	Price int64
	Qty   int64
}

type CancelCommand struct {
	ID    OrderID
	Side  Side
	Price int64
}

// ModifyCommand is cancel-then-new at the supplied side/price slot with the
// new quantity and type. When the id does not resolve to a resting order at
// that slot, the modify is a no-op and emits nothing.
type ModifyCommand struct {
	ID    OrderID
	Side  Side
	Price int64
	Qty   int64
	Type  OrderType
}

func (NewCommand) isCommand()    {}
func (CancelCommand) isCommand() {}
func (ModifyCommand) isCommand() {}
