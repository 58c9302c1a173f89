package loyalty

import (
	"context"
	"math"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/services/ledger"
	"scaleplus-loyalty/services/member"
	"scaleplus-loyalty/services/tier"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const defaultGrantDescription = "Points granted"

// GrantEngine credits points to users on behalf of an administrator.
type GrantEngine struct {
	*deps
}

type Grant struct {
	Applied     int64              `json:"applied"`
	Multiplier  float64            `json:"multiplier,omitempty"`
	User        member.User        `json:"user"`
	Transaction ledger.Transaction `json:"transaction"`
}

// Grant credits rawPoints, scaled by the multiplier of the tier the user is
// in before the credit, and records an earn transaction for the applied
// amount.
func (e *GrantEngine) Grant(ctx context.Context, userID string, rawPoints int64, description string) (Grant, error) {
	ctx, span := e.tel.start(ctx, "grant",
		attribute.String("user_id", userID),
		attribute.Int64("raw_points", rawPoints),
	)
	var result Grant
	var err error
	defer func() { e.tel.finish(ctx, span, "grant", err) }()

	log := logger.For(ctx).With(zap.String("user_id", userID))

	if rawPoints <= 0 {
		err = ledger.ErrInvalidTransaction.With(errutil.WithDetail("points", "must be greater than 0"))
		return Grant{}, err
	}
	if description == "" {
		description = defaultGrantDescription
	}

	err = e.store.Update(ctx, func(tx *Tx) error {
		users := tx.Users()
		u, err := users.Get(userID)
		if err != nil {
			return err
		}

		current := e.currentTier(u)
		applied, ok := applyMultiplier(rawPoints, current)
		if !ok || applied > math.MaxInt64-u.Points {
			return member.ErrInvalidPoints.With(errutil.WithDetail("points", "balance would overflow"))
		}

		total := u.Points + applied
		next := e.tiers.Resolve(total)
		updated, err := users.SetBalance(u.ID, total, next.ID)
		if err != nil {
			return err
		}

		recorded, err := tx.Ledger().Append(ledger.Transaction{
			ID:          e.ids.NewID(gen.PrefixTransaction),
			UserID:      u.ID,
			Type:        ledger.TypeEarn,
			Points:      applied,
			Description: description,
			Timestamp:   e.clock.Now(),
		})
		if err != nil {
			return err
		}

		result = Grant{
			Applied:     applied,
			Multiplier:  current.PointMultiplier,
			User:        updated,
			Transaction: recorded,
		}
		return nil
	})
	if err != nil {
		log.Warn("grant rejected", zap.Int64("raw_points", rawPoints), zap.Error(err))
		return Grant{}, err
	}

	e.tel.granted.Add(ctx, result.Applied, metric.WithAttributes(attribute.String("tier", result.User.TierID)))
	log.Info("points granted",
		zap.Int64("raw_points", rawPoints),
		zap.Int64("applied_points", result.Applied),
		zap.Int64("balance", result.User.Points),
		zap.String("tier_id", result.User.TierID),
		zap.String("transaction_id", result.Transaction.ID),
	)
	return result, nil
}

// SetPoints overwrites the balance without a multiplier and without a
// ledger entry. It is meant for corrections.
func (e *GrantEngine) SetPoints(ctx context.Context, userID string, total int64) (member.User, error) {
	ctx, span := e.tel.start(ctx, "set_points",
		attribute.String("user_id", userID),
		attribute.Int64("points", total),
	)
	var updated member.User
	var previous int64
	var err error
	defer func() { e.tel.finish(ctx, span, "set_points", err) }()

	log := logger.For(ctx).With(zap.String("user_id", userID))

	if total < 0 {
		err = member.ErrInvalidPoints.With(errutil.WithDetail("points", "must not be negative"))
		return member.User{}, err
	}

	err = e.store.Update(ctx, func(tx *Tx) error {
		users := tx.Users()
		u, err := users.Get(userID)
		if err != nil {
			return err
		}
		previous = u.Points

		updated, err = users.SetBalance(u.ID, total, e.tiers.Resolve(total).ID)
		return err
	})
	if err != nil {
		log.Warn("set points rejected", zap.Int64("points", total), zap.Error(err))
		return member.User{}, err
	}

	log.Info("points corrected",
		zap.Int64("previous_points", previous),
		zap.Int64("points", updated.Points),
		zap.String("tier_id", updated.TierID),
	)
	return updated, nil
}

// currentTier prefers the recorded tier and falls back to resolving the
// balance when the recorded id is unknown to the table.
func (e *GrantEngine) currentTier(u member.User) tier.Tier {
	if t, ok := e.tiers.Get(u.TierID); ok {
		return t
	}
	return e.tiers.Resolve(u.Points)
}

// applyMultiplier reports false when the scaled value does not fit in an
// int64.
func applyMultiplier(raw int64, t tier.Tier) (int64, bool) {
	if !t.HasMultiplier() {
		return raw, true
	}
	scaled := math.Round(float64(raw) * t.PointMultiplier)
	if scaled >= math.MaxInt64 {
		return 0, false
	}
	return int64(scaled), true
}
