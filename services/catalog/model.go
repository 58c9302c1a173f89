package catalog

import (
	"encoding/json"
	"fmt"

	"scaleplus-loyalty/pkg/errutil"
)

var (
	ErrRewardNotFound   = errutil.Define(errutil.StatusNotFound, "REWARD_NOT_FOUND", "reward not found")
	ErrMechanicNotFound = errutil.Define(errutil.StatusNotFound, "MECHANIC_NOT_FOUND", "mechanic not found")
	ErrInvalidReward    = errutil.Define(errutil.StatusValidationFailed, "INVALID_REWARD", "invalid reward")
	ErrInvalidMechanic  = errutil.Define(errutil.StatusValidationFailed, "INVALID_MECHANIC", "invalid mechanic")
)

type Reward struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int64  `json:"pointsRequired"`
	ImageURL       string `json:"imageUrl,omitempty"`
	// Stock is nil for unlimited rewards.
	Stock *int64 `json:"stock,omitempty"`
}

func (r Reward) Unlimited() bool {
	return r.Stock == nil
}

func (r Reward) InStock() bool {
	return r.Stock == nil || *r.Stock > 0
}

func (r Reward) Validate() error {
	var details []errutil.Detail
	if r.PointsRequired < 0 {
		details = append(details, errutil.Detail{Field: "pointsRequired", Message: "must not be negative"})
	}
	if r.Stock != nil && *r.Stock < 0 {
		details = append(details, errutil.Detail{Field: "stock", Message: "must not be negative"})
	}
	if len(details) > 0 {
		return ErrInvalidReward.With(errutil.WithDetails(details...))
	}
	return nil
}

// clone detaches Stock so stored rewards never share it with callers.
func (r Reward) clone() Reward {
	if r.Stock != nil {
		r.Stock = Stock(*r.Stock)
	}
	return r
}

// Stock returns a pointer suitable for Reward.Stock.
func Stock(n int64) *int64 {
	return &n
}

type Mechanic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

func (m Mechanic) Validate() error {
	if m.Title == "" {
		return ErrInvalidMechanic.With(errutil.WithDetail("title", "is required"))
	}
	return nil
}

// UnmarshalJSON treats a missing isActive as active.
func (m *Mechanic) UnmarshalJSON(data []byte) error {
	type alias Mechanic
	aux := struct {
		alias
		IsActive *bool `json:"isActive"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode mechanic: %w", err)
	}
	*m = Mechanic(aux.alias)
	m.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}
