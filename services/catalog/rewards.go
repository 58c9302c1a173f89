package catalog

import (
	"scaleplus-loyalty/pkg/collection"
	"scaleplus-loyalty/pkg/errutil"
)

// Rewards is the reward catalog. It is not safe for concurrent use.
type Rewards struct {
	items *collection.Ordered[Reward]
}

func NewRewards(rewards ...Reward) *Rewards {
	r := &Rewards{items: collection.New(func(r Reward) string { return r.ID })}
	for _, reward := range rewards {
		r.items.Set(reward.clone())
	}
	return r
}

func notFoundReward(id string) error {
	return ErrRewardNotFound.With(errutil.WithDetail("rewardId", id))
}

func (r *Rewards) Get(id string) (Reward, error) {
	reward, ok := r.items.Get(id)
	if !ok {
		return Reward{}, notFoundReward(id)
	}
	return reward.clone(), nil
}

func (r *Rewards) List() []Reward {
	out := r.items.List()
	for i := range out {
		out[i] = out[i].clone()
	}
	return out
}

func (r *Rewards) Len() int {
	return r.items.Len()
}

// Add stores a new reward. The id must not be in use.
func (r *Rewards) Add(reward Reward) (Reward, error) {
	if reward.ID == "" {
		return Reward{}, ErrInvalidReward.With(errutil.WithDetail("id", "is required"))
	}
	if err := reward.Validate(); err != nil {
		return Reward{}, err
	}
	if r.items.Has(reward.ID) {
		return Reward{}, ErrInvalidReward.With(errutil.WithDetail("id", "already exists"))
	}
	r.items.Set(reward.clone())
	return reward.clone(), nil
}

// Update replaces the stored reward with the same id.
func (r *Rewards) Update(reward Reward) (Reward, error) {
	if !r.items.Has(reward.ID) {
		return Reward{}, notFoundReward(reward.ID)
	}
	if err := reward.Validate(); err != nil {
		return Reward{}, err
	}
	r.items.Set(reward.clone())
	return reward.clone(), nil
}

func (r *Rewards) Delete(id string) error {
	if !r.items.Delete(id) {
		return notFoundReward(id)
	}
	return nil
}

// TakeOne removes one unit from a limited reward. Unlimited rewards are
// unaffected.
func (r *Rewards) TakeOne(id string) (Reward, error) {
	reward, ok := r.items.Get(id)
	if !ok {
		return Reward{}, notFoundReward(id)
	}
	if reward.Stock == nil {
		return reward.clone(), nil
	}
	if *reward.Stock <= 0 {
		return Reward{}, ErrInvalidReward.With(errutil.WithDetail("stock", "is exhausted"))
	}
	reward.Stock = Stock(*reward.Stock - 1)
	r.items.Set(reward)
	return reward.clone(), nil
}

func (r *Rewards) Clone() *Rewards {
	return &Rewards{items: r.items.Clone()}
}

func (r *Rewards) MarshalJSON() ([]byte, error) {
	return r.items.MarshalJSON()
}

func (r *Rewards) UnmarshalJSON(data []byte) error {
	fresh := NewRewards()
	if err := fresh.items.UnmarshalJSON(data); err != nil {
		return err
	}
	*r = *fresh
	return nil
}
