package loyalty

import (
	"context"
	"fmt"
	"time"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/pkg/pagination"
	"scaleplus-loyalty/services/ledger"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LedgerStore is the read and append surface over the transaction log.
type LedgerStore struct {
	*deps
}

// Append records tx and persists the log. A missing id or timestamp is
// filled in; a timestamp earlier than the last recorded entry is rejected.
func (l *LedgerStore) Append(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	ctx, span := l.tel.start(ctx, "ledger_append",
		attribute.String("user_id", tx.UserID),
		attribute.String("type", string(tx.Type)),
	)
	var recorded ledger.Transaction
	var err error
	defer func() { l.tel.finish(ctx, span, "ledger_append", err) }()

	if tx.ID == "" {
		tx.ID = l.ids.NewID(gen.PrefixTransaction)
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = l.clock.Now()
	}

	err = l.store.Update(ctx, func(t *Tx) error {
		history := t.Ledger()
		if last, ok := history.Last(); ok && tx.Timestamp.Before(last.Timestamp) {
			return ErrInvalidTransaction.With(errutil.WithDetail("timestamp",
				fmt.Sprintf("precedes last recorded entry at %s", last.Timestamp.Format(time.RFC3339Nano))))
		}
		recorded, err = history.Append(tx)
		return err
	})
	if err != nil {
		logger.For(ctx).Warn("ledger append rejected", zap.String("user_id", tx.UserID), zap.Error(err))
		return ledger.Transaction{}, err
	}
	l.clock.Observe(recorded.Timestamp)
	return recorded, nil
}

// SyncClock moves the clock forward to the last recorded transaction, so
// entries appended after a restart never precede persisted ones.
func (l *LedgerStore) SyncClock() {
	_ = l.store.View(func(s State) error {
		if last, ok := s.Ledger.Last(); ok {
			l.clock.Observe(last.Timestamp)
		}
		return nil
	})
}

// ForUser returns the user's transactions, newest first.
func (l *LedgerStore) ForUser(userID string) []ledger.Transaction {
	var out []ledger.Transaction
	_ = l.store.View(func(s State) error {
		out = s.Ledger.ForUser(userID)
		return nil
	})
	return out
}

func (l *LedgerStore) History(userID string, p pagination.Pagination) (ledger.Page, error) {
	var page ledger.Page
	err := l.store.View(func(s State) error {
		var err error
		page, err = s.Ledger.Page(userID, p)
		return err
	})
	return page, err
}

type ChainReport struct {
	UserID   string `json:"userId"`
	Valid    bool   `json:"valid"`
	BrokenAt string `json:"brokenAt,omitempty"`
	Entries  int    `json:"entries"`
}

// VerifyChain recomputes the user's hash chain.
func (l *LedgerStore) VerifyChain(userID string) ChainReport {
	report := ChainReport{UserID: userID}
	_ = l.store.View(func(s State) error {
		report.Valid, report.BrokenAt = s.Ledger.VerifyChain(userID)
		report.Entries = len(s.Ledger.ForUser(userID))
		return nil
	})
	return report
}

// All returns the whole log in append order.
func (l *LedgerStore) All() []ledger.Transaction {
	var out []ledger.Transaction
	_ = l.store.View(func(s State) error {
		out = s.Ledger.All()
		return nil
	})
	return out
}
