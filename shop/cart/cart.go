// Package cart applies cart mutations ahead of cart rendering and owns
// the page-index adjustment rule for operations that shrink the cart.
package cart

import "context"

// Op is a cart mutation requested by an inline button.
type Op int

const (
	// OpNone leaves the cart untouched (plain navigation into the view).
	OpNone Op = iota
	// OpIncrement adds one unit, creating the line at quantity 1 if absent.
	OpIncrement
	// OpDecrement removes one unit, deleting the line at zero.
	OpDecrement
	// OpDelete removes the line unconditionally.
	OpDelete
)

// OpFromMenuName maps a cart-level menu name onto a mutation. Navigation
// names ("cart", "previous", "next") map to OpNone.
func OpFromMenuName(name string) Op {
	switch name {
	case "increment":
		return OpIncrement
	case "decrement":
		return OpDecrement
	case "delete":
		return OpDelete
	default:
		return OpNone
	}
}

// Store is the slice of the repository the engine mutates through.
type Store interface {
	AddToCart(ctx context.Context, userID, productID int64) error
	ReduceInCart(ctx context.Context, userID, productID int64) (bool, error)
	DeleteFromCart(ctx context.Context, userID, productID int64) error
}

// Engine executes cart mutations.
type Engine struct {
	store Store
}

// NewEngine builds an Engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Apply runs the mutation and returns the adjusted page index. A delete,
// or a decrement that removes the line, steps the page back by one (never
// below 1) so the view stays anchored near the removed item. Increment
// never adjusts the page.
func (e *Engine) Apply(ctx context.Context, op Op, userID, productID int64, page int) (int, error) {
	switch op {
	case OpDelete:
		if err := e.store.DeleteFromCart(ctx, userID, productID); err != nil {
			return page, err
		}
		if page > 1 {
			page--
		}
	case OpDecrement:
		survives, err := e.store.ReduceInCart(ctx, userID, productID)
		if err != nil {
			return page, err
		}
		if !survives && page > 1 {
			page--
		}
	case OpIncrement:
		if err := e.store.AddToCart(ctx, userID, productID); err != nil {
			return page, err
		}
	}
	return page, nil
}
