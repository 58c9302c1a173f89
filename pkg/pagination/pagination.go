package pagination

import (
	"encoding/base64"
	"encoding/json"

	"scaleplus-loyalty/pkg/errutil"
)

const (
	DefaultLimit = 10
	MaxLimit     = 250
)

var ErrInvalidCursor = errutil.Define(errutil.StatusBadRequest, "INVALID_CURSOR", "invalid cursor")

type Pagination struct {
	Cursor string
	Limit  int
}

// Normalize clamps Limit into [1, MaxLimit], substituting DefaultLimit for zero.
func (p Pagination) Normalize() Pagination {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

type Cursor struct {
	Timestamp string `json:"ts,omitempty"`
	ID        string `json:"id,omitempty"`
}

type PageInfo struct {
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidCursor.With(errutil.WithErr(err))
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, ErrInvalidCursor.With(errutil.WithErr(err))
	}

	return &cursor, nil
}

// BuildPageInfo trims data to limit and derives the cursor of the last kept item.
// data is expected to hold up to limit+1 items.
func BuildPageInfo[T any](data []T, limit int, extractCursor func(T) Cursor) ([]T, PageInfo, error) {
	if len(data) == 0 {
		return data, PageInfo{}, nil
	}

	hasMore := false
	if len(data) > limit {
		hasMore = true
		data = data[:limit]
	}

	info := PageInfo{HasMore: hasMore}
	if hasMore {
		next, err := EncodeCursor(extractCursor(data[len(data)-1]))
		if err != nil {
			return nil, PageInfo{}, err
		}
		info.NextCursor = next
	}

	return data, info, nil
}
