package tier

import "math"

type Progress struct {
	Current      Tier    `json:"current"`
	Next         *Tier   `json:"next,omitempty"`
	PointsToNext int64   `json:"pointsToNext"`
	Percent      float64 `json:"percent"`
}

// Progress reports how far points are from the next tier. At the top of the
// table the percentage is 100.
func (t *Table) Progress(points int64) Progress {
	cur := t.Resolve(points)
	next, ok := t.Next(cur.ID)
	if !ok {
		return Progress{Current: cur, Percent: 100}
	}

	span := float64(next.MinPoints - cur.MinPoints)
	pct := float64(points-cur.MinPoints) / span * 100
	pct = math.Max(0, math.Min(100, pct))

	return Progress{
		Current:      cur,
		Next:         &next,
		PointsToNext: next.MinPoints - points,
		Percent:      pct,
	}
}
