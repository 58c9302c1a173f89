// Package tier maps point balances onto membership tiers.
package tier

import (
	"sort"

	"scaleplus-loyalty/pkg/config"
	"scaleplus-loyalty/pkg/errutil"

	"github.com/gosimple/slug"
)

var ErrConfiguration = errutil.Define(errutil.StatusInternal, "TIER_CONFIGURATION", "invalid tier table")

type Tier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinPoints int64  `json:"minPoints"`
	// PointMultiplier scales granted points; zero means no multiplier.
	PointMultiplier float64 `json:"pointMultiplier,omitempty"`
}

func (t Tier) HasMultiplier() bool {
	return t.PointMultiplier > 0
}

// Resolve scans tiers from the highest floor down and returns the first one
// whose floor is at or below points.
func Resolve(points int64, tiers []Tier) (Tier, error) {
	if len(tiers) == 0 {
		return Tier{}, ErrConfiguration.With(errutil.WithDetail("tiers", "table is empty"))
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinPoints > sorted[j].MinPoints })

	if sorted[len(sorted)-1].MinPoints != 0 {
		return Tier{}, ErrConfiguration.With(errutil.WithDetail("tiers", "no tier starts at 0 points"))
	}

	for _, t := range sorted {
		if t.MinPoints <= points {
			return t, nil
		}
	}

	// only reachable for negative balances
	return sorted[len(sorted)-1], nil
}

// Table is a validated tier table ordered by ascending floor.
type Table struct {
	tiers []Tier
	byID  map[string]int
}

func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, ErrConfiguration.With(errutil.WithDetail("tiers", "table is empty"))
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinPoints < sorted[j].MinPoints })

	byID := make(map[string]int, len(sorted))
	for i := range sorted {
		t := &sorted[i]
		if t.ID == "" {
			t.ID = slug.Make(t.Name)
		}
		if t.ID == "" {
			return nil, ErrConfiguration.With(errutil.WithDetail("tiers", "tier has neither id nor name"))
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		if _, dup := byID[t.ID]; dup {
			return nil, ErrConfiguration.With(errutil.WithDetail(t.ID, "duplicate tier id"))
		}
		if t.MinPoints < 0 {
			return nil, ErrConfiguration.With(errutil.WithDetail(t.ID, "minPoints must not be negative"))
		}
		if i > 0 && t.MinPoints == sorted[i-1].MinPoints {
			return nil, ErrConfiguration.With(errutil.WithDetail(t.ID, "minPoints must be strictly increasing"))
		}
		if t.PointMultiplier < 0 {
			return nil, ErrConfiguration.With(errutil.WithDetail(t.ID, "pointMultiplier must be positive"))
		}
		byID[t.ID] = i
	}

	if sorted[0].MinPoints != 0 {
		return nil, ErrConfiguration.With(errutil.WithDetail("tiers", "no tier starts at 0 points"))
	}

	return &Table{tiers: sorted, byID: byID}, nil
}

func FromConfig(cfg *config.Config) (*Table, error) {
	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers = append(tiers, Tier{
			ID:              t.ID,
			Name:            t.Name,
			MinPoints:       t.MinPoints,
			PointMultiplier: t.PointMultiplier,
		})
	}
	return NewTable(tiers)
}

func (t *Table) Resolve(points int64) Tier {
	for i := len(t.tiers) - 1; i >= 0; i-- {
		if t.tiers[i].MinPoints <= points {
			return t.tiers[i]
		}
	}
	return t.tiers[0]
}

func (t *Table) Floor() Tier {
	return t.tiers[0]
}

func (t *Table) Get(id string) (Tier, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Tier{}, false
	}
	return t.tiers[i], true
}

// Next returns the tier following id, or false at the top of the table.
func (t *Table) Next(id string) (Tier, bool) {
	i, ok := t.byID[id]
	if !ok || i+1 >= len(t.tiers) {
		return Tier{}, false
	}
	return t.tiers[i+1], true
}

func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}
