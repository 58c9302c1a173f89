package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"scaleplus-loyalty/pkg/errutil"
)

type Type string

const (
	TypeEarn   Type = "earn"
	TypeRedeem Type = "redeem"
)

func (t Type) Valid() bool {
	return t == TypeEarn || t == TypeRedeem
}

var ErrInvalidTransaction = errutil.Define(errutil.StatusBadRequest, "INVALID_TRANSACTION", "invalid transaction")

// Transaction is one immutable ledger record. Points is always the positive
// magnitude; Type carries the direction.
type Transaction struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Type         Type      `json:"type"`
	Points       int64     `json:"points"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
	RewardID     string    `json:"rewardId,omitempty"`
	PreviousHash string    `json:"previousHash,omitempty"`
	Hash         string    `json:"hash,omitempty"`
}

func (m *Transaction) HashFields() map[string]string {
	return map[string]string{
		"id":            m.ID,
		"user_id":       m.UserID,
		"type":          string(m.Type),
		"points":        fmt.Sprintf("%d", m.Points),
		"description":   m.Description,
		"reward_id":     m.RewardID,
		"timestamp":     m.Timestamp.UTC().Format(time.RFC3339Nano),
		"previous_hash": m.PreviousHash,
	}
}

func (m *Transaction) GenerateHash() string {
	fields := m.HashFields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fields[k]))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// Validate checks the shape rules every recorded transaction must satisfy.
func (m *Transaction) Validate() error {
	var details []errutil.Detail
	if m.ID == "" {
		details = append(details, errutil.Detail{Field: "id", Message: "is required"})
	}
	if m.UserID == "" {
		details = append(details, errutil.Detail{Field: "userId", Message: "is required"})
	}
	if !m.Type.Valid() {
		details = append(details, errutil.Detail{Field: "type", Message: fmt.Sprintf("unknown type %q", m.Type)})
	}
	if m.Points <= 0 {
		details = append(details, errutil.Detail{Field: "points", Message: "must be greater than 0"})
	}
	if m.Timestamp.IsZero() {
		details = append(details, errutil.Detail{Field: "timestamp", Message: "is required"})
	}
	switch {
	case m.Type == TypeRedeem && m.RewardID == "":
		details = append(details, errutil.Detail{Field: "rewardId", Message: "is required for redeem"})
	case m.Type == TypeEarn && m.RewardID != "":
		details = append(details, errutil.Detail{Field: "rewardId", Message: "must be empty for earn"})
	}

	if len(details) > 0 {
		return ErrInvalidTransaction.With(errutil.WithDetails(details...))
	}
	return nil
}
