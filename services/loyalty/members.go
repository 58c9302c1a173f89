package loyalty

import (
	"context"

	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/services/member"
	"scaleplus-loyalty/services/tier"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Members is the user roster surface.
type Members struct {
	*deps
}

type Registration struct {
	Name            string
	Email           string
	Phone           string
	ProfileImageURL string
}

func (m *Members) Get(userID string) (member.User, error) {
	var u member.User
	err := m.store.View(func(s State) error {
		var err error
		u, err = s.Users.Get(userID)
		return err
	})
	return u, err
}

func (m *Members) List() []member.User {
	var out []member.User
	_ = m.store.View(func(s State) error {
		out = s.Users.List()
		return nil
	})
	return out
}

// Register creates a user with no points in the floor tier.
func (m *Members) Register(ctx context.Context, r Registration) (member.User, error) {
	ctx, span := m.tel.start(ctx, "register")
	var created member.User
	var err error
	defer func() { m.tel.finish(ctx, span, "register", err) }()

	now := m.clock.Now()
	u := member.User{
		ID:               m.ids.NewID(gen.PrefixUser),
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		ProfileImageURL:  r.ProfileImageURL,
		Points:           0,
		TierID:           m.tiers.Floor().ID,
		RegistrationDate: &now,
	}

	err = m.store.Update(ctx, func(tx *Tx) error {
		created, err = tx.Users().Register(u)
		return err
	})
	if err != nil {
		logger.For(ctx).Warn("registration rejected", zap.String("email", r.Email), zap.Error(err))
		return member.User{}, err
	}

	logger.For(ctx).Info("user registered", zap.String("user_id", created.ID))
	return created, nil
}

func (m *Members) UpdateProfile(ctx context.Context, userID string, p member.Profile) (member.User, error) {
	ctx, span := m.tel.start(ctx, "update_profile", attribute.String("user_id", userID))
	var updated member.User
	var err error
	defer func() { m.tel.finish(ctx, span, "update_profile", err) }()

	err = m.store.Update(ctx, func(tx *Tx) error {
		updated, err = tx.Users().UpdateProfile(userID, p)
		return err
	})
	if err != nil {
		logger.For(ctx).Warn("profile update rejected", zap.String("user_id", userID), zap.Error(err))
		return member.User{}, err
	}

	logger.For(ctx).Info("profile updated", zap.String("user_id", userID))
	return updated, nil
}

// Progress reports the user's standing against the next tier.
func (m *Members) Progress(userID string) (tier.Progress, error) {
	u, err := m.Get(userID)
	if err != nil {
		return tier.Progress{}, err
	}
	return m.tiers.Progress(u.Points), nil
}
