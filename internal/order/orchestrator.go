package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/cart"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/notify"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/referral"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/retry"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/stock"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

const (
	reserveRetryAttempts = 3
	reserveRetryBase     = 100 * time.Millisecond
)

// Carts is the slice of the cart manager checkout needs.
type Carts interface {
	GetCart(ctx context.Context, ownerID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, ownerID string) error
}

// StockReserver claims, finalizes and rolls back individual stock units.
type StockReserver interface {
	ReserveMany(ctx context.Context, productID string, quantity int) ([]stock.Unit, error)
	MarkSold(ctx context.Context, unitIDs []uuid.UUID) error
	Release(ctx context.Context, unitIDs []uuid.UUID) error
}

type Orders interface {
	Create(ctx context.Context, o *Order) error
	RecordDelivery(ctx context.Context, itemID uuid.UUID, delivered int, unitIDs []uuid.UUID) error
	SetStatus(ctx context.Context, orderID uuid.UUID, status Status) error
}

type Balances interface {
	CreditBalance(ctx context.Context, id int64, amount float64) (float64, error)
}

type Promos interface {
	RedeemPromoCode(ctx context.Context, code string) error
}

type Referrals interface {
	RewardOrder(ctx context.Context, buyerID int64, amount float64) ([]referral.Reward, error)
}

type Notifier interface {
	PublishOrderCreated(ctx context.Context, payload notify.OrderCreatedPayload) error
	PublishOrderDelivered(ctx context.Context, payload notify.OrderDeliveredPayload) error
	PublishOrderBackordered(ctx context.Context, payload notify.OrderBackorderedPayload) error
	PublishReferralRewarded(ctx context.Context, payload notify.ReferralRewardedPayload) error
}

// Orchestrator turns a checked-out cart into a persisted order, claims stock
// per line, and settles the difference between what the cart promised and
// what inventory could actually deliver.
type Orchestrator struct {
	carts     Carts
	stock     StockReserver
	orders    Orders
	balances  Balances
	promos    Promos
	referrals Referrals
	notifier  Notifier
	logger    *log.Logger
}

func NewOrchestrator(carts Carts, reserver StockReserver, orders Orders, balances Balances, promos Promos, referrals Referrals, notifier Notifier, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		carts:     carts,
		stock:     reserver,
		orders:    orders,
		balances:  balances,
		promos:    promos,
		referrals: referrals,
		notifier:  notifier,
		logger:    logger,
	}
}

// Checkout snapshots the cart into an order, reserves units per line item,
// records delivered/undelivered portions, refunds the undelivered value to
// the user's balance, and clears the cart. The cart's instant/prepaid split
// is advisory only; the reservation outcome here is authoritative.
func (o *Orchestrator) Checkout(ctx context.Context, userID int64) (*Order, error) {
	ownerID := strconv.FormatInt(userID, 10)

	c, err := o.carts.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	ord := orderFromCart(userID, c)
	if err := o.orders.Create(ctx, ord); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	var (
		claimed        []uuid.UUID
		deliveredValue = decimal.Zero
		refundValue    = decimal.Zero
	)

	for i := range ord.Items {
		it := &ord.Items[i]

		units, err := o.reserveLine(ctx, it.ProductID, it.Quantity)
		for _, u := range units {
			it.UnitIDs = append(it.UnitIDs, u.ID)
			claimed = append(claimed, u.ID)
		}
		if err != nil {
			o.abort(ctx, ord, claimed)
			return nil, fmt.Errorf("reserve %s: %w", it.ProductID, err)
		}

		it.DeliveredQuantity = len(units)
		if err := o.orders.RecordDelivery(ctx, it.ID, it.DeliveredQuantity, it.UnitIDs); err != nil {
			o.abort(ctx, ord, claimed)
			return nil, fmt.Errorf("record delivery: %w", err)
		}

		deliveredValue = deliveredValue.Add(
			cart.ApplyPercentDiscount(cart.LineTotal(it.UnitPrice, it.DeliveredQuantity, it.DiscountPercent), ord.DiscountPercent))
		refundValue = refundValue.Add(
			cart.ApplyPercentDiscount(cart.LineTotal(it.UnitPrice, it.Quantity-it.DeliveredQuantity, it.DiscountPercent), ord.DiscountPercent))
	}

	if err := o.stock.MarkSold(ctx, claimed); err != nil {
		o.abort(ctx, ord, claimed)
		return nil, fmt.Errorf("finalize units: %w", err)
	}

	refund := cart.Round2(refundValue)
	if refund > 0 {
		if _, err := o.balances.CreditBalance(ctx, userID, refund); err != nil {
			return nil, fmt.Errorf("refund to balance: %w", err)
		}
		ord.Status = StatusPartiallyDelivered
	} else {
		ord.Status = StatusDelivered
	}
	if err := o.orders.SetStatus(ctx, ord.ID, ord.Status); err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}

	if ord.PromoCode != "" {
		if err := o.promos.RedeemPromoCode(ctx, ord.PromoCode); err != nil {
			// The code may have expired between apply and checkout; the
			// order already priced it in, so just log.
			o.logger.Printf("redeem promo %q: %v", ord.PromoCode, err)
		}
	}

	if err := o.carts.ClearCart(ctx, ownerID); err != nil {
		o.logger.Printf("clear cart %s: %v", ownerID, err)
	}

	o.reward(ctx, ord, cart.Round2(deliveredValue))
	o.publishOutcome(ctx, ord, refund)

	return ord, nil
}

// reserveLine retries transient backing-store failures while keeping the
// units claimed by earlier attempts; conditional claims make the retry safe.
func (o *Orchestrator) reserveLine(ctx context.Context, productID string, quantity int) ([]stock.Unit, error) {
	var units []stock.Unit
	remaining := quantity

	err := retry.Do(ctx, reserveRetryAttempts, reserveRetryBase, func() error {
		got, err := o.stock.ReserveMany(ctx, productID, remaining)
		units = append(units, got...)
		remaining -= len(got)
		return err
	})
	return units, err
}

// abort rolls claimed units back to available and cancels the order row.
func (o *Orchestrator) abort(ctx context.Context, ord *Order, claimed []uuid.UUID) {
	if err := o.stock.Release(ctx, claimed); err != nil {
		o.logger.Printf("release units for order %s: %v", ord.ID, err)
	}
	if err := o.orders.SetStatus(ctx, ord.ID, StatusCancelled); err != nil {
		o.logger.Printf("cancel order %s: %v", ord.ID, err)
	}
}

func (o *Orchestrator) reward(ctx context.Context, ord *Order, chargedTotal float64) {
	rewards, err := o.referrals.RewardOrder(ctx, ord.UserID, chargedTotal)
	if err != nil {
		o.logger.Printf("referral rewards for order %s: %v", ord.ID, err)
	}
	for _, rw := range rewards {
		err := o.notifier.PublishReferralRewarded(ctx, notify.ReferralRewardedPayload{
			OrderID:    ord.ID.String(),
			ReferrerID: rw.ReferrerID,
			BuyerID:    ord.UserID,
			Level:      rw.Level,
			Amount:     rw.Amount,
		})
		if err != nil {
			o.logger.Printf("publish referral reward: %v", err)
		}
	}
}

// publishOutcome emits the notification events that drive Telegram messages.
// Publishing is best effort; a broker hiccup must not fail a completed order.
func (o *Orchestrator) publishOutcome(ctx context.Context, ord *Order, refund float64) {
	lines := make([]notify.OrderLine, 0, len(ord.Items))
	var delivered, backordered []notify.OrderLine
	for _, it := range ord.Items {
		line := notify.OrderLine{
			ProductID:         it.ProductID,
			ProductName:       it.ProductName,
			Quantity:          it.Quantity,
			DeliveredQuantity: it.DeliveredQuantity,
		}
		lines = append(lines, line)
		if it.DeliveredQuantity > 0 {
			delivered = append(delivered, line)
		}
		if it.DeliveredQuantity < it.Quantity {
			backordered = append(backordered, line)
		}
	}

	err := o.notifier.PublishOrderCreated(ctx, notify.OrderCreatedPayload{
		OrderID: ord.ID.String(),
		UserID:  ord.UserID,
		Total:   ord.Total,
		Lines:   lines,
	})
	if err != nil {
		o.logger.Printf("publish order created: %v", err)
	}

	if len(delivered) > 0 {
		err := o.notifier.PublishOrderDelivered(ctx, notify.OrderDeliveredPayload{
			OrderID: ord.ID.String(),
			UserID:  ord.UserID,
			Lines:   delivered,
		})
		if err != nil {
			o.logger.Printf("publish order delivered: %v", err)
		}
	}

	if len(backordered) > 0 {
		err := o.notifier.PublishOrderBackordered(ctx, notify.OrderBackorderedPayload{
			OrderID:  ord.ID.String(),
			UserID:   ord.UserID,
			Refunded: refund,
			Lines:    backordered,
		})
		if err != nil {
			o.logger.Printf("publish order backordered: %v", err)
		}
	}
}

func orderFromCart(userID int64, c *cart.Cart) *Order {
	ord := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          StatusPending,
		PromoCode:       c.PromoCode,
		DiscountPercent: c.PromoDiscountPercent,
		Subtotal:        c.Subtotal,
		Total:           c.Total,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range c.Items {
		ord.Items = append(ord.Items, Item{
			ID:              uuid.New(),
			OrderID:         ord.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TotalPrice:      it.TotalPrice,
		})
	}
	return ord
}
