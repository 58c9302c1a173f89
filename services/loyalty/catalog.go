package loyalty

import (
	"context"
	"strings"

	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/services/catalog"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CatalogStore manages rewards and earning mechanics.
type CatalogStore struct {
	*deps
}

// AddReward stores a new reward, assigning an id when none is given.
func (c *CatalogStore) AddReward(ctx context.Context, reward catalog.Reward) (catalog.Reward, error) {
	if reward.ID == "" {
		reward.ID = c.ids.NewID(gen.PrefixReward)
	}
	var saved catalog.Reward
	err := c.mutate(ctx, "reward_add", attribute.String("reward_id", reward.ID), func(tx *Tx) error {
		var err error
		saved, err = tx.Rewards().Add(reward)
		return err
	})
	if err != nil {
		return catalog.Reward{}, err
	}
	logger.For(ctx).Info("reward added", zap.String("reward_id", saved.ID), zap.Int64("points_required", saved.PointsRequired))
	return saved, nil
}

// UpdateReward replaces the reward with the same id. Past redemptions keep
// the values they were recorded with.
func (c *CatalogStore) UpdateReward(ctx context.Context, reward catalog.Reward) (catalog.Reward, error) {
	var saved catalog.Reward
	err := c.mutate(ctx, "reward_update", attribute.String("reward_id", reward.ID), func(tx *Tx) error {
		var err error
		saved, err = tx.Rewards().Update(reward)
		return err
	})
	if err != nil {
		return catalog.Reward{}, err
	}
	logger.For(ctx).Info("reward updated", zap.String("reward_id", saved.ID))
	return saved, nil
}

func (c *CatalogStore) DeleteReward(ctx context.Context, id string) error {
	err := c.mutate(ctx, "reward_delete", attribute.String("reward_id", id), func(tx *Tx) error {
		return tx.Rewards().Delete(id)
	})
	if err != nil {
		return err
	}
	logger.For(ctx).Info("reward deleted", zap.String("reward_id", id))
	return nil
}

func (c *CatalogStore) GetReward(id string) (catalog.Reward, error) {
	var reward catalog.Reward
	err := c.store.View(func(s State) error {
		var err error
		reward, err = s.Rewards.Get(id)
		return err
	})
	return reward, err
}

func (c *CatalogStore) ListRewards() []catalog.Reward {
	var out []catalog.Reward
	_ = c.store.View(func(s State) error {
		out = s.Rewards.List()
		return nil
	})
	return out
}

// MechanicInput describes a mechanic to create. A nil IsActive means active.
type MechanicInput struct {
	Title       string
	Description string
	IsActive    *bool
}

func (c *CatalogStore) AddMechanic(ctx context.Context, in MechanicInput) (catalog.Mechanic, error) {
	mechanic := catalog.Mechanic{
		ID:          c.ids.NewID(gen.PrefixMechanic),
		Title:       in.Title,
		Description: in.Description,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	var saved catalog.Mechanic
	err := c.mutate(ctx, "mechanic_add", attribute.String("mechanic_id", mechanic.ID), func(tx *Tx) error {
		var err error
		saved, err = tx.Mechanics().Add(mechanic)
		return err
	})
	if err != nil {
		return catalog.Mechanic{}, err
	}
	logger.For(ctx).Info("mechanic added", zap.String("mechanic_id", saved.ID))
	return saved, nil
}

func (c *CatalogStore) UpdateMechanic(ctx context.Context, mechanic catalog.Mechanic) (catalog.Mechanic, error) {
	var saved catalog.Mechanic
	err := c.mutate(ctx, "mechanic_update", attribute.String("mechanic_id", mechanic.ID), func(tx *Tx) error {
		var err error
		saved, err = tx.Mechanics().Update(mechanic)
		return err
	})
	if err != nil {
		return catalog.Mechanic{}, err
	}
	logger.For(ctx).Info("mechanic updated", zap.String("mechanic_id", saved.ID))
	return saved, nil
}

func (c *CatalogStore) DeleteMechanic(ctx context.Context, id string) error {
	err := c.mutate(ctx, "mechanic_delete", attribute.String("mechanic_id", id), func(tx *Tx) error {
		return tx.Mechanics().Delete(id)
	})
	if err != nil {
		return err
	}
	logger.For(ctx).Info("mechanic deleted", zap.String("mechanic_id", id))
	return nil
}

func (c *CatalogStore) GetMechanic(id string) (catalog.Mechanic, error) {
	var mechanic catalog.Mechanic
	err := c.store.View(func(s State) error {
		var err error
		mechanic, err = s.Mechanics.Get(id)
		return err
	})
	return mechanic, err
}

func (c *CatalogStore) ListMechanics(activeOnly bool) []catalog.Mechanic {
	var out []catalog.Mechanic
	_ = c.store.View(func(s State) error {
		if activeOnly {
			out = s.Mechanics.Active()
		} else {
			out = s.Mechanics.List()
		}
		return nil
	})
	return out
}

// SearchMechanics matches query against title and description, ignoring
// case. An empty query returns every mechanic.
func (c *CatalogStore) SearchMechanics(query string) []catalog.Mechanic {
	q := strings.ToLower(strings.TrimSpace(query))
	all := c.ListMechanics(false)
	if q == "" {
		return all
	}
	out := make([]catalog.Mechanic, 0, len(all))
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Title), q) || strings.Contains(strings.ToLower(m.Description), q) {
			out = append(out, m)
		}
	}
	return out
}

type Availability struct {
	Reward      catalog.Reward `json:"reward"`
	Affordable  bool           `json:"affordable"`
	OutOfStock  bool           `json:"outOfStock"`
	PointsShort int64          `json:"pointsShort,omitempty"`
}

// Availability reports, per reward, whether userID could redeem it now.
func (c *CatalogStore) Availability(userID string) ([]Availability, error) {
	var out []Availability
	err := c.store.View(func(s State) error {
		u, err := s.Users.Get(userID)
		if err != nil {
			return err
		}
		for _, r := range s.Rewards.List() {
			a := Availability{
				Reward:     r,
				Affordable: u.Points >= r.PointsRequired,
				OutOfStock: !r.InStock(),
			}
			if !a.Affordable {
				a.PointsShort = r.PointsRequired - u.Points
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogStore) mutate(ctx context.Context, op string, attr attribute.KeyValue, fn func(*Tx) error) (err error) {
	ctx, span := c.tel.start(ctx, op, attr)
	defer func() { c.tel.finish(ctx, span, op, err) }()

	err = c.store.Update(ctx, fn)
	if err != nil {
		logger.For(ctx).Warn("catalog change rejected", zap.String("operation", op), zap.Error(err))
	}
	return err
}
