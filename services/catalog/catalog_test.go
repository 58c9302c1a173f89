package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewardValidation(t *testing.T) {
	r := NewRewards()

	_, err := r.Add(Reward{ID: "r1", Name: "Mug", PointsRequired: -1})
	require.ErrorIs(t, err, ErrInvalidReward)

	_, err = r.Add(Reward{ID: "r1", Name: "Mug", PointsRequired: 10, Stock: Stock(-2)})
	require.ErrorIs(t, err, ErrInvalidReward)

	_, err = r.Add(Reward{Name: "Mug"})
	require.ErrorIs(t, err, ErrInvalidReward)

	require.Zero(t, r.Len())
}

func TestRewardCRUD(t *testing.T) {
	r := NewRewards()

	added, err := r.Add(Reward{ID: "r1", Name: "Mug", PointsRequired: 100, Stock: Stock(3)})
	require.NoError(t, err)
	require.Equal(t, int64(3), *added.Stock)

	_, err = r.Add(Reward{ID: "r1", Name: "Dup"})
	require.ErrorIs(t, err, ErrInvalidReward)

	updated, err := r.Update(Reward{ID: "r1", Name: "Big Mug", PointsRequired: 150})
	require.NoError(t, err)
	require.True(t, updated.Unlimited())

	got, err := r.Get("r1")
	require.NoError(t, err)
	require.Equal(t, "Big Mug", got.Name)
	require.Nil(t, got.Stock)
	require.Empty(t, got.Description)

	_, err = r.Update(Reward{ID: "missing", Name: "x"})
	require.ErrorIs(t, err, ErrRewardNotFound)

	require.NoError(t, r.Delete("r1"))
	require.ErrorIs(t, r.Delete("r1"), ErrRewardNotFound)
	_, err = r.Get("r1")
	require.ErrorIs(t, err, ErrRewardNotFound)
}

func TestRewardStockNotShared(t *testing.T) {
	stock := Stock(5)
	r := NewRewards()
	_, err := r.Add(Reward{ID: "r1", Name: "Mug", Stock: stock})
	require.NoError(t, err)

	*stock = 99
	got, err := r.Get("r1")
	require.NoError(t, err)
	require.Equal(t, int64(5), *got.Stock)

	*got.Stock = 0
	again, _ := r.Get("r1")
	require.Equal(t, int64(5), *again.Stock)
}

func TestTakeOne(t *testing.T) {
	r := NewRewards(
		Reward{ID: "limited", Name: "Tee", PointsRequired: 2000, Stock: Stock(1)},
		Reward{ID: "unlimited", Name: "Pass", PointsRequired: 3500},
	)

	before := r.Clone()

	got, err := r.TakeOne("limited")
	require.NoError(t, err)
	require.Equal(t, int64(0), *got.Stock)
	require.False(t, got.InStock())

	_, err = r.TakeOne("limited")
	require.ErrorIs(t, err, ErrInvalidReward)

	got, err = r.TakeOne("unlimited")
	require.NoError(t, err)
	require.True(t, got.InStock())

	_, err = r.TakeOne("missing")
	require.ErrorIs(t, err, ErrRewardNotFound)

	original, err := before.Get("limited")
	require.NoError(t, err)
	require.Equal(t, int64(1), *original.Stock)
}

func TestRewardsJSONRoundTrip(t *testing.T) {
	r := NewRewards(
		Reward{ID: "reward1", Name: "$5 Discount Coupon", PointsRequired: 100, Stock: Stock(100), ImageURL: "https://picsum.photos/seed/reward1/300/200"},
		Reward{ID: "reward3", Name: "20% Off Next Purchase", PointsRequired: 750},
	)

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	restored := NewRewards()
	require.NoError(t, json.Unmarshal(raw, restored))
	require.Equal(t, r.List(), restored.List())
	require.NotContains(t, string(raw), `"stock":null`)
}

func TestMechanicCRUD(t *testing.T) {
	m := NewMechanics()

	_, err := m.Add(Mechanic{ID: "m1"})
	require.ErrorIs(t, err, ErrInvalidMechanic)

	_, err = m.Add(Mechanic{ID: "m1", Title: "Purchases", Description: "1 point per $1", IsActive: true})
	require.NoError(t, err)
	_, err = m.Add(Mechanic{ID: "m2", Title: "Referral", IsActive: false})
	require.NoError(t, err)

	require.Len(t, m.Active(), 1)

	_, err = m.Update(Mechanic{ID: "m2", Title: "Referral", IsActive: true})
	require.NoError(t, err)
	require.Len(t, m.Active(), 2)

	_, err = m.Update(Mechanic{ID: "nope", Title: "x"})
	require.ErrorIs(t, err, ErrMechanicNotFound)

	require.NoError(t, m.Delete("m1"))
	require.ErrorIs(t, m.Delete("m1"), ErrMechanicNotFound)

	got, err := m.Get("m2")
	require.NoError(t, err)
	require.Equal(t, "Referral", got.Title)
}

func TestMechanicDefaultsActive(t *testing.T) {
	raw := `[{"id":"m1","title":"Birthday","description":"bonus"},{"id":"m2","title":"Old","description":"","isActive":false}]`

	m := NewMechanics()
	require.NoError(t, json.Unmarshal([]byte(raw), m))

	first, err := m.Get("m1")
	require.NoError(t, err)
	require.True(t, first.IsActive)

	second, err := m.Get("m2")
	require.NoError(t, err)
	require.False(t, second.IsActive)
}
