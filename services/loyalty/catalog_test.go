package loyalty

import (
	"context"
	"testing"
	"time"

	"scaleplus-loyalty/pkg/kvstore"
	"scaleplus-loyalty/services/catalog"
	"scaleplus-loyalty/services/member"

	"github.com/stretchr/testify/require"
)

func TestRewardLifecycle(t *testing.T) {
	f := newFixture(t, kvstore.NewMemory(), scenarioTiers())
	ctx := context.Background()

	added, err := f.svc.Catalog.AddReward(ctx, catalog.Reward{Name: "Tote bag", PointsRequired: 300, Stock: catalog.Stock(5)})
	require.NoError(t, err)
	require.Regexp(t, `^reward_\d+$`, added.ID)

	added.Stock = catalog.Stock(10)
	added.Description = "Canvas"
	updated, err := f.svc.Catalog.UpdateReward(ctx, added)
	require.NoError(t, err)
	require.EqualValues(t, 10, *updated.Stock)

	got, err := f.svc.Catalog.GetReward(added.ID)
	require.NoError(t, err)
	require.Equal(t, "Canvas", got.Description)

	_, err = f.svc.Catalog.UpdateReward(ctx, catalog.Reward{ID: "missing", Name: "x"})
	require.ErrorIs(t, err, ErrRewardNotFound)

	_, err = f.svc.Catalog.AddReward(ctx, catalog.Reward{Name: "Bad", PointsRequired: -1})
	require.ErrorIs(t, err, ErrInvalidReward)

	_, err = f.svc.Catalog.UpdateReward(ctx, catalog.Reward{ID: added.ID, Name: "Bad", Stock: catalog.Stock(-2)})
	require.ErrorIs(t, err, ErrInvalidReward)

	require.NoError(t, f.svc.Catalog.DeleteReward(ctx, added.ID))
	require.ErrorIs(t, f.svc.Catalog.DeleteReward(ctx, added.ID), ErrRewardNotFound)
	require.Empty(t, f.svc.Catalog.ListRewards())
}

func TestDeletedRewardKeepsHistory(t *testing.T) {
	f := newFixture(t, kvstore.NewMemory(), scenarioTiers())
	f.addUser(t, "u1", 500)
	f.addReward(t, "r1", 100, nil)
	ctx := context.Background()

	tx, err := f.svc.Redemptions.Redeem(ctx, "u1", "r1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Catalog.DeleteReward(ctx, "r1"))

	history := f.svc.Ledger.ForUser("u1")
	require.Len(t, history, 1)
	require.Equal(t, tx, history[0])

	_, err = f.svc.Redemptions.Redeem(ctx, "u1", "r1")
	require.ErrorIs(t, err, ErrRewardNotFound)
}

func TestMechanicLifecycle(t *testing.T) {
	f := newFixture(t, kvstore.NewMemory(), scenarioTiers())
	ctx := context.Background()
	inactive := false

	visit, err := f.svc.Catalog.AddMechanic(ctx, MechanicInput{Title: "Store visit", Description: "Scan at the counter"})
	require.NoError(t, err)
	require.True(t, visit.IsActive)
	require.Regexp(t, `^mech_\d+$`, visit.ID)

	review, err := f.svc.Catalog.AddMechanic(ctx, MechanicInput{Title: "Write a review", IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, review.IsActive)

	_, err = f.svc.Catalog.AddMechanic(ctx, MechanicInput{Description: "untitled"})
	require.ErrorIs(t, err, ErrInvalidMechanic)

	require.Len(t, f.svc.Catalog.ListMechanics(false), 2)
	active := f.svc.Catalog.ListMechanics(true)
	require.Len(t, active, 1)
	require.Equal(t, visit.ID, active[0].ID)

	require.Len(t, f.svc.Catalog.SearchMechanics("COUNTER"), 1)
	require.Len(t, f.svc.Catalog.SearchMechanics(""), 2)

	review.IsActive = true
	_, err = f.svc.Catalog.UpdateMechanic(ctx, review)
	require.NoError(t, err)
	require.Len(t, f.svc.Catalog.ListMechanics(true), 2)

	_, err = f.svc.Catalog.UpdateMechanic(ctx, catalog.Mechanic{ID: "missing", Title: "x"})
	require.ErrorIs(t, err, ErrMechanicNotFound)

	require.NoError(t, f.svc.Catalog.DeleteMechanic(ctx, visit.ID))
	require.ErrorIs(t, f.svc.Catalog.DeleteMechanic(ctx, visit.ID), ErrMechanicNotFound)
	_, err = f.svc.Catalog.GetMechanic(visit.ID)
	require.ErrorIs(t, err, ErrMechanicNotFound)
}

func TestAvailability(t *testing.T) {
	f := newFixture(t, kvstore.NewMemory(), scenarioTiers())
	f.addUser(t, "u1", 300)
	f.addReward(t, "cheap", 100, nil)
	f.addReward(t, "pricey", 1000, nil)
	f.addReward(t, "gone", 50, catalog.Stock(0))

	got, err := f.svc.Catalog.Availability("u1")
	require.NoError(t, err)

	byID := map[string]Availability{}
	for _, a := range got {
		byID[a.Reward.ID] = a
	}
	require.True(t, byID["cheap"].Affordable)
	require.False(t, byID["cheap"].OutOfStock)
	require.False(t, byID["pricey"].Affordable)
	require.EqualValues(t, 700, byID["pricey"].PointsShort)
	require.True(t, byID["gone"].OutOfStock)

	_, err = f.svc.Catalog.Availability("ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegisterAndProfile(t *testing.T) {
	f := newFixture(t, kvstore.NewMemory(), scenarioTiers())
	ctx := context.Background()

	u, err := f.svc.Members.Register(ctx, Registration{Name: "Carol", Email: "Carol@Example.com", Phone: "555-0111"})
	require.NoError(t, err)
	require.Regexp(t, `^user_\d+$`, u.ID)
	require.Zero(t, u.Points)
	require.Equal(t, "bronze", u.TierID)
	require.NotNil(t, u.RegistrationDate)
	require.WithinDuration(t, epoch, *u.RegistrationDate, time.Second)

	_, err = f.svc.Members.Register(ctx, Registration{Name: "Imposter", Email: "carol@example.COM"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = f.svc.Members.Register(ctx, Registration{Email: "nameless@example.com"})
	require.ErrorIs(t, err, ErrInvalidProfile)

	name := "Carol Danvers"
	updated, err := f.svc.Members.UpdateProfile(ctx, u.ID, member.Profile{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, "Carol@Example.com", updated.Email)

	_, err = f.svc.Members.UpdateProfile(ctx, "ghost", member.Profile{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)

	require.Len(t, f.svc.Members.List(), 1)
}

func TestProgress(t *testing.T) {
	f := newFixture(t, kvstore.NewMemory(), scenarioTiers())
	f.addUser(t, "u1", 1000)
	f.addUser(t, "u2", 2000)

	p, err := f.svc.Members.Progress("u1")
	require.NoError(t, err)
	require.Equal(t, "silver", p.Current.ID)
	require.Equal(t, "gold", p.Next.ID)
	require.EqualValues(t, 500, p.PointsToNext)
	require.InDelta(t, 50.0, p.Percent, 0.001)

	p, err = f.svc.Members.Progress("u2")
	require.NoError(t, err)
	require.Nil(t, p.Next)
	require.Equal(t, 100.0, p.Percent)

	_, err = f.svc.Members.Progress("ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}
