package loyalty

import (
	"context"
	"fmt"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/services/ledger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RedemptionEngine exchanges points for catalog rewards.
type RedemptionEngine struct {
	*deps
}

// Redeem debits the reward's price, takes one unit of limited stock and
// records a redeem transaction, all as one unit. Checks run in order: user,
// reward, balance, stock.
func (e *RedemptionEngine) Redeem(ctx context.Context, userID, rewardID string) (ledger.Transaction, error) {
	ctx, span := e.tel.start(ctx, "redeem",
		attribute.String("user_id", userID),
		attribute.String("reward_id", rewardID),
	)
	var recorded ledger.Transaction
	var err error
	defer func() { e.tel.finish(ctx, span, "redeem", err) }()

	log := logger.For(ctx).With(zap.String("user_id", userID), zap.String("reward_id", rewardID))

	err = e.store.Update(ctx, func(tx *Tx) error {
		users := tx.Users()
		u, err := users.Get(userID)
		if err != nil {
			return err
		}

		rewards := tx.Rewards()
		reward, err := rewards.Get(rewardID)
		if err != nil {
			return err
		}

		// a reward without a price cannot be debited
		if reward.PointsRequired <= 0 || u.Points < reward.PointsRequired {
			return ErrInsufficientPoints.With(
				errutil.WithDetail("pointsRequired", fmt.Sprintf("%d", reward.PointsRequired)),
				errutil.WithDetail("points", fmt.Sprintf("%d", u.Points)),
			)
		}
		if !reward.InStock() {
			return ErrOutOfStock.With(errutil.WithDetail("rewardId", reward.ID))
		}

		total := u.Points - reward.PointsRequired
		if _, err := users.SetBalance(u.ID, total, e.tiers.Resolve(total).ID); err != nil {
			return err
		}
		if _, err := rewards.TakeOne(reward.ID); err != nil {
			return err
		}

		recorded, err = tx.Ledger().Append(ledger.Transaction{
			ID:          e.ids.NewID(gen.PrefixTransaction),
			UserID:      u.ID,
			Type:        ledger.TypeRedeem,
			Points:      reward.PointsRequired,
			Description: fmt.Sprintf("Redeemed: %s", reward.Name),
			Timestamp:   e.clock.Now(),
			RewardID:    reward.ID,
		})
		return err
	})
	if err != nil {
		log.Warn("redemption rejected", zap.Error(err))
		return ledger.Transaction{}, err
	}

	e.tel.redeemed.Add(ctx, recorded.Points, metric.WithAttributes(attribute.String("reward_id", rewardID)))
	log.Info("reward redeemed",
		zap.Int64("points", recorded.Points),
		zap.String("transaction_id", recorded.ID),
	)
	return recorded, nil
}
