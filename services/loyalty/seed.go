package loyalty

import (
	"context"
	"time"

	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/services/catalog"
	"scaleplus-loyalty/services/member"

	"go.uber.org/zap"
)

func seedDate(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	t = t.UTC()
	return &t
}

// DefaultUsers is the demo roster. Tier ids are assigned when seeding.
func DefaultUsers() []member.User {
	return []member.User{
		{
			ID:               "user1",
			Name:             "Alice Wonderland",
			Email:            "alice@example.com",
			Points:           250,
			Phone:            "555-0101",
			RegistrationDate: seedDate("2023-01-15T10:00:00Z"),
		},
		{
			ID:               "user2",
			Name:             "Bob The Builder",
			Email:            "bob@example.com",
			Points:           1200,
			Phone:            "555-0102",
			RegistrationDate: seedDate("2022-11-20T14:30:00Z"),
		},
		{
			ID:               "user3",
			Name:             "Scaleplus Admin",
			Email:            "admin@scaleplus.com",
			Points:           5600,
			IsAdmin:          true,
			Phone:            "555-0199",
			RegistrationDate: seedDate("2022-01-01T09:00:00Z"),
		},
	}
}

func DefaultRewards() []catalog.Reward {
	return []catalog.Reward{
		{
			ID:             "reward1",
			Name:           "$5 Discount Coupon",
			Description:    "Get $5 off your next purchase.",
			PointsRequired: 100,
			ImageURL:       "https://picsum.photos/seed/reward1/300/200",
			Stock:          catalog.Stock(100),
		},
		{
			ID:             "reward2",
			Name:           "Free Coffee",
			Description:    "Enjoy a free cup of our signature blend coffee.",
			PointsRequired: 250,
			ImageURL:       "https://picsum.photos/seed/reward2/300/200",
			Stock:          catalog.Stock(50),
		},
		{
			ID:             "reward3",
			Name:           "20% Off Next Purchase",
			Description:    "A hefty 20% discount on any single item.",
			PointsRequired: 750,
			ImageURL:       "https://picsum.photos/seed/reward3/300/200",
		},
		{
			ID:             "reward4",
			Name:           "Exclusive T-Shirt",
			Description:    "Limited edition branded T-shirt.",
			PointsRequired: 2000,
			ImageURL:       "https://picsum.photos/seed/reward4/300/200",
			Stock:          catalog.Stock(20),
		},
		{
			ID:             "reward5",
			Name:           "Early Access Pass",
			Description:    "Get early access to new product launches.",
			PointsRequired: 3500,
			ImageURL:       "https://picsum.photos/seed/reward5/300/200",
		},
	}
}

// Seed writes the demo roster and catalog when nothing has been stored yet.
// It reports whether anything was written.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	d := s.d

	seeded := false
	err := d.store.Update(ctx, func(tx *Tx) error {
		if !tx.base.Empty() {
			return nil
		}
		users := tx.Users()
		for _, u := range DefaultUsers() {
			u.TierID = d.tiers.Resolve(u.Points).ID
			if _, err := users.Register(u); err != nil {
				return err
			}
		}
		rewards := tx.Rewards()
		for _, r := range DefaultRewards() {
			if _, err := rewards.Add(r); err != nil {
				return err
			}
		}
		// Write the empty mechanics list too so every key exists.
		tx.Mechanics()
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		logger.For(ctx).Info("seeded loyalty data",
			zap.Int("users", len(DefaultUsers())),
			zap.Int("rewards", len(DefaultRewards())),
		)
	}
	return seeded, nil
}

// Reconcile recomputes every stored tier id from the user's balance and
// persists the roster once when any of them were stale. It returns the ids
// of the users that changed.
func (s *Service) Reconcile(ctx context.Context) ([]string, error) {
	d := s.d

	var changed []string
	err := d.store.Update(ctx, func(tx *Tx) error {
		var stale []member.User
		for _, u := range tx.base.Users.List() {
			if want := d.tiers.Resolve(u.Points).ID; u.TierID != want {
				u.TierID = want
				stale = append(stale, u)
			}
		}
		if len(stale) == 0 {
			return nil
		}
		users := tx.Users()
		for _, u := range stale {
			if _, err := users.SetBalance(u.ID, u.Points, u.TierID); err != nil {
				return err
			}
			changed = append(changed, u.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		logger.For(ctx).Info("reconciled stale tiers", zap.Strings("user_ids", changed))
	}
	return changed, nil
}
