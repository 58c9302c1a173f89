package loyalty

import (
	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/services/catalog"
	"scaleplus-loyalty/services/ledger"
	"scaleplus-loyalty/services/member"
	"scaleplus-loyalty/services/tier"
)

var (
	ErrInsufficientPoints = errutil.Define(errutil.StatusUnprocessableEntity, "INSUFFICIENT_POINTS", "not enough points to redeem this reward")
	ErrOutOfStock         = errutil.Define(errutil.StatusConflict, "OUT_OF_STOCK", "reward is out of stock")
)

// Re-exported so callers can match every failure kind from one package.
var (
	ErrUserNotFound       = member.ErrUserNotFound
	ErrDuplicateEmail     = member.ErrDuplicateEmail
	ErrInvalidProfile     = member.ErrInvalidProfile
	ErrInvalidPoints      = member.ErrInvalidPoints
	ErrRewardNotFound     = catalog.ErrRewardNotFound
	ErrMechanicNotFound   = catalog.ErrMechanicNotFound
	ErrInvalidReward      = catalog.ErrInvalidReward
	ErrInvalidMechanic    = catalog.ErrInvalidMechanic
	ErrInvalidTransaction = ledger.ErrInvalidTransaction
	ErrConfiguration      = tier.ErrConfiguration
)
