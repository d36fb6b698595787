package cart

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidQuantity rejects non-positive add quantities and negative
	// update quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrItemNotFound is returned when an operation targets a product the
	// cart does not contain.
	ErrItemNotFound = errors.New("item not in cart")
)

// PromoValidator resolves a promo code to its discount percent.
// An unknown or expired code is reported via an error.
type PromoValidator interface {
	ValidatePromoCode(ctx context.Context, code string) (float64, error)
}

// Manager is the only component that mutates carts. Callers pass in live
// catalog and stock numbers; the manager owns the split and pricing policy.
type Manager struct {
	store  Store
	promos PromoValidator
	sfg    singleflight.Group // collapses concurrent reads of the same cart
}

func NewManager(store Store, promos PromoValidator) *Manager {
	return &Manager{store: store, promos: promos}
}

// AddItemInput carries the live numbers a caller observed just before the
// mutation. Price and discount always refresh the stored item; the quantity
// merges with what is already in the cart.
type AddItemInput struct {
	ProductID       string
	ProductName     string
	Quantity        int
	UnitPrice       float64
	AvailableStock  int
	DiscountPercent float64
}

func (m *Manager) AddItem(ctx context.Context, ownerID string, in AddItemInput) (*Cart, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	return m.store.Update(ctx, ownerID, func(current *Cart) (*Cart, error) {
		if current == nil {
			current = &Cart{OwnerID: ownerID}
		}

		it := current.item(in.ProductID)
		if it == nil {
			current.Items = append(current.Items, Item{ProductID: in.ProductID})
			it = &current.Items[len(current.Items)-1]
		}

		it.Quantity += in.Quantity
		it.ProductName = in.ProductName
		it.UnitPrice = in.UnitPrice
		it.DiscountPercent = in.DiscountPercent
		it.InstantQuantity = splitQuantity(it.Quantity, in.AvailableStock)

		current.recompute()
		return current, nil
	})
}

// UpdateItemQuantity replaces the item's quantity outright. Zero removes the
// item; a negative quantity is rejected.
func (m *Manager) UpdateItemQuantity(ctx context.Context, ownerID, productID string, quantity, availableStock int) (*Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return m.RemoveItem(ctx, ownerID, productID)
	}

	return m.store.Update(ctx, ownerID, func(current *Cart) (*Cart, error) {
		if current == nil {
			return nil, ErrItemNotFound
		}

		it := current.item(productID)
		if it == nil {
			return nil, ErrItemNotFound
		}

		it.Quantity = quantity
		it.InstantQuantity = splitQuantity(quantity, availableStock)

		current.recompute()
		return current, nil
	})
}

func (m *Manager) RemoveItem(ctx context.Context, ownerID, productID string) (*Cart, error) {
	return m.store.Update(ctx, ownerID, func(current *Cart) (*Cart, error) {
		if current == nil {
			return nil, ErrItemNotFound
		}
		if !current.removeItem(productID) {
			return nil, ErrItemNotFound
		}
		current.recompute()
		return current, nil
	})
}

func (m *Manager) ClearCart(ctx context.Context, ownerID string) error {
	return m.store.Delete(ctx, ownerID)
}

// ApplyPromoCode validates the code and, when valid, stores it on the cart and
// recomputes the total. An invalid code leaves the cart untouched.
func (m *Manager) ApplyPromoCode(ctx context.Context, ownerID, code string) (*Cart, error) {
	percent, err := m.promos.ValidatePromoCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return m.store.Update(ctx, ownerID, func(current *Cart) (*Cart, error) {
		if current == nil {
			current = &Cart{OwnerID: ownerID}
		}
		current.PromoCode = code
		current.PromoDiscountPercent = percent
		current.recompute()
		return current, nil
	})
}

// GetCart returns the stored snapshot without refreshing prices or splits.
// An absent cart reads as an empty one.
func (m *Manager) GetCart(ctx context.Context, ownerID string) (*Cart, error) {
	v, err, _ := m.sfg.Do(ownerID, func() (interface{}, error) {
		c, err := m.store.Get(ctx, ownerID)
		if errors.Is(err, ErrCartNotFound) {
			return &Cart{OwnerID: ownerID}, nil
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}
