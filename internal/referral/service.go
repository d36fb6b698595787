package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/cart"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/user"
)

// Users is the slice of the user repository the reward flow needs.
type Users interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	CreditBalance(ctx context.Context, id int64, amount float64) (float64, error)
}

// Reward is one credited referral payout.
type Reward struct {
	ReferrerID int64
	Level      int
	Amount     float64
}

// Service credits a percentage of each paid order up the buyer's referral
// chain, one tier percent per level. Tiers like [5, 2] pay the direct
// referrer 5% and the referrer's referrer 2%.
type Service struct {
	users Users
	tiers []float64
}

func NewService(users Users, tiers []float64) *Service {
	return &Service{users: users, tiers: tiers}
}

// RewardOrder walks the chain starting at the buyer. A missing user or a
// break in the chain ends the walk; rewards already credited stand.
func (s *Service) RewardOrder(ctx context.Context, buyerID int64, amount float64) ([]Reward, error) {
	if amount <= 0 || len(s.tiers) == 0 {
		return nil, nil
	}

	current, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load buyer %d: %w", buyerID, err)
	}

	total := decimal.NewFromFloat(amount)
	var rewards []Reward

	for level, percent := range s.tiers {
		if current.ReferrerID == nil {
			break
		}
		referrerID := *current.ReferrerID

		payout := cart.Round2(total.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)))
		if payout > 0 {
			if _, err := s.users.CreditBalance(ctx, referrerID, payout); err != nil {
				return rewards, fmt.Errorf("credit referrer %d: %w", referrerID, err)
			}
			rewards = append(rewards, Reward{ReferrerID: referrerID, Level: level + 1, Amount: payout})
		}

		current, err = s.users.GetByID(ctx, referrerID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				break
			}
			return rewards, fmt.Errorf("load referrer %d: %w", referrerID, err)
		}
	}

	return rewards, nil
}
