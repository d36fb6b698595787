package cart

import (
	"context"
	"errors"
)

// Store persists one Cart per owner. Put is a whole-value replace; Update
// applies a read-modify-write with optimistic concurrency so that two
// overlapping mutations cannot silently drop each other's changes.
type Store interface {
	Get(ctx context.Context, ownerID string) (*Cart, error)
	Put(ctx context.Context, ownerID string, c *Cart) error
	Update(ctx context.Context, ownerID string, mutate func(current *Cart) (*Cart, error)) (*Cart, error)
	Delete(ctx context.Context, ownerID string) error
}

var (
	// ErrCartNotFound is returned by Get when no cart exists for the owner.
	ErrCartNotFound = errors.New("cart not found")

	// ErrConcurrentUpdate is returned by Update when the optimistic write
	// kept losing against concurrent mutations of the same cart.
	ErrConcurrentUpdate = errors.New("cart modified concurrently")
)
