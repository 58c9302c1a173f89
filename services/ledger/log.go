package ledger

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/pagination"
)

// Log is the append-only transaction history. Entries are kept in append
// order; each user's entries form a hash chain.
type Log struct {
	entries []Transaction
	ids     map[string]struct{}
	heads   map[string]string
}

func NewLog() *Log {
	return &Log{
		ids:   make(map[string]struct{}),
		heads: make(map[string]string),
	}
}

// Append validates tx, links it to the user's chain and records it.
func (l *Log) Append(tx Transaction) (Transaction, error) {
	tx.Timestamp = tx.Timestamp.UTC()
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	if _, dup := l.ids[tx.ID]; dup {
		return Transaction{}, ErrInvalidTransaction.With(errutil.WithDetail("id", fmt.Sprintf("%s already recorded", tx.ID)))
	}

	tx.PreviousHash = l.heads[tx.UserID]
	tx.Hash = tx.GenerateHash()

	l.entries = append(l.entries, tx)
	l.ids[tx.ID] = struct{}{}
	l.heads[tx.UserID] = tx.Hash

	return tx, nil
}

// ForUser returns the user's transactions newest first. Entries sharing a
// timestamp are ordered latest append first.
func (l *Log) ForUser(userID string) []Transaction {
	out := make([]Transaction, 0)
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

type Page struct {
	Data     []Transaction       `json:"data"`
	PageInfo pagination.PageInfo `json:"pageInfo"`
}

// Page returns one page of ForUser(userID), starting after the cursor.
func (l *Log) Page(userID string, p pagination.Pagination) (Page, error) {
	p = p.Normalize()
	all := l.ForUser(userID)

	start := 0
	if p.Cursor != "" {
		cursor, err := pagination.DecodeCursor(p.Cursor)
		if err != nil {
			return Page{}, err
		}
		start = -1
		for i, tx := range all {
			if tx.ID == cursor.ID {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return Page{}, pagination.ErrInvalidCursor.With(errutil.WithDetail("cursor", "unknown transaction"))
		}
	}

	end := min(start+p.Limit+1, len(all))
	data, info, err := pagination.BuildPageInfo(all[start:end], p.Limit, func(tx Transaction) pagination.Cursor {
		return pagination.Cursor{Timestamp: tx.Timestamp.Format(time.RFC3339Nano), ID: tx.ID}
	})
	if err != nil {
		return Page{}, err
	}

	return Page{Data: append([]Transaction{}, data...), PageInfo: info}, nil
}

// VerifyChain recomputes the user's chain. It returns the id of the first
// entry that does not match, or "" when the chain is intact.
func (l *Log) VerifyChain(userID string) (bool, string) {
	var lastHash string
	for _, entry := range l.entries {
		if entry.UserID != userID {
			continue
		}
		if entry.Hash != entry.GenerateHash() || entry.PreviousHash != lastHash {
			return false, entry.ID
		}
		lastHash = entry.Hash
	}
	return true, ""
}

func (l *Log) Len() int {
	return len(l.entries)
}

// All returns every entry in append order.
func (l *Log) All() []Transaction {
	out := make([]Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recently appended entry.
func (l *Log) Last() (Transaction, bool) {
	if len(l.entries) == 0 {
		return Transaction{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Clone returns an independent log. Entries are never modified in place, so
// the clone shares the backing array up to its current length.
func (l *Log) Clone() *Log {
	c := &Log{
		entries: l.entries[:len(l.entries):len(l.entries)],
		ids:     make(map[string]struct{}, len(l.ids)),
		heads:   make(map[string]string, len(l.heads)),
	}
	for k := range l.ids {
		c.ids[k] = struct{}{}
	}
	for k, v := range l.heads {
		c.heads[k] = v
	}
	return c
}

func (l *Log) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON restores a persisted log in its stored append order. A log
// stored newest first is reversed so chains are walked oldest to newest.
func (l *Log) UnmarshalJSON(data []byte) error {
	var entries []Transaction
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	if n := len(entries); n > 1 && entries[0].Timestamp.After(entries[n-1].Timestamp) {
		slices.Reverse(entries)
	}

	restored := NewLog()
	for _, tx := range entries {
		if _, dup := restored.ids[tx.ID]; dup {
			return fmt.Errorf("duplicate transaction id %q", tx.ID)
		}
		restored.entries = append(restored.entries, tx)
		restored.ids[tx.ID] = struct{}{}
		if tx.Hash != "" {
			restored.heads[tx.UserID] = tx.Hash
		}
	}

	*l = *restored
	return nil
}
