package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/pagination"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func earn(id, user string, points int64, at time.Duration) Transaction {
	return Transaction{ID: id, UserID: user, Type: TypeEarn, Points: points, Description: "grant", Timestamp: epoch.Add(at)}
}

func TestAppendValidation(t *testing.T) {
	cases := map[string]Transaction{
		"zero points":       {ID: "t1", UserID: "u1", Type: TypeEarn, Points: 0, Timestamp: epoch},
		"negative points":   {ID: "t1", UserID: "u1", Type: TypeEarn, Points: -5, Timestamp: epoch},
		"redeem no reward":  {ID: "t1", UserID: "u1", Type: TypeRedeem, Points: 10, Timestamp: epoch},
		"earn with reward":  {ID: "t1", UserID: "u1", Type: TypeEarn, Points: 10, RewardID: "r1", Timestamp: epoch},
		"unknown type":      {ID: "t1", UserID: "u1", Type: "refund", Points: 10, Timestamp: epoch},
		"missing user":      {ID: "t1", Type: TypeEarn, Points: 10, Timestamp: epoch},
		"missing id":        {UserID: "u1", Type: TypeEarn, Points: 10, Timestamp: epoch},
		"missing timestamp": {ID: "t1", UserID: "u1", Type: TypeEarn, Points: 10},
	}

	for name, tx := range cases {
		t.Run(name, func(t *testing.T) {
			log := NewLog()
			_, err := log.Append(tx)
			require.ErrorIs(t, err, ErrInvalidTransaction)

			var be errutil.BaseError
			require.True(t, errors.As(err, &be))
			require.Equal(t, errutil.StatusBadRequest, be.Status())
			require.NotEmpty(t, be.Details)
			require.Zero(t, log.Len())
		})
	}
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	log := NewLog()
	_, err := log.Append(earn("t1", "u1", 10, 0))
	require.NoError(t, err)

	_, err = log.Append(earn("t1", "u1", 20, time.Second))
	require.ErrorIs(t, err, ErrInvalidTransaction)
	require.Equal(t, 1, log.Len())
}

func TestAppendRedeem(t *testing.T) {
	log := NewLog()
	tx, err := log.Append(Transaction{
		ID: "t1", UserID: "u1", Type: TypeRedeem, Points: 250,
		Description: "Redeemed: Free Coffee", RewardID: "reward2", Timestamp: epoch,
	})
	require.NoError(t, err)
	require.Equal(t, "reward2", tx.RewardID)
	require.NotEmpty(t, tx.Hash)
	require.Empty(t, tx.PreviousHash)
}

func TestForUserNewestFirst(t *testing.T) {
	log := NewLog()
	_, err := log.Append(earn("t1", "u1", 10, 0))
	require.NoError(t, err)
	_, err = log.Append(earn("t2", "u2", 10, time.Minute))
	require.NoError(t, err)
	_, err = log.Append(earn("t3", "u1", 10, 2*time.Minute))
	require.NoError(t, err)
	// same timestamp as t3, appended later
	_, err = log.Append(earn("t4", "u1", 10, 2*time.Minute))
	require.NoError(t, err)

	got := log.ForUser("u1")
	require.Equal(t, []string{"t4", "t3", "t1"}, txIDs(got))

	for i := 1; i < len(got); i++ {
		require.False(t, got[i].Timestamp.After(got[i-1].Timestamp))
	}

	require.Empty(t, log.ForUser("nobody"))
	require.NotNil(t, log.ForUser("nobody"))
}

func TestVerifyChain(t *testing.T) {
	log := NewLog()
	first, err := log.Append(earn("t1", "u1", 100, 0))
	require.NoError(t, err)
	second, err := log.Append(earn("t2", "u1", 50, time.Minute))
	require.NoError(t, err)
	_, err = log.Append(earn("t3", "u2", 5, 2*time.Minute))
	require.NoError(t, err)

	require.Equal(t, first.Hash, second.PreviousHash)

	ok, broken := log.VerifyChain("u1")
	require.True(t, ok)
	require.Empty(t, broken)

	log.entries[1].Points = 5000
	ok, broken = log.VerifyChain("u1")
	require.False(t, ok)
	require.Equal(t, "t2", broken)

	ok, _ = log.VerifyChain("u2")
	require.True(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	log := NewLog()
	_, err := log.Append(earn("t1", "u1", 10, 0))
	require.NoError(t, err)

	clone := log.Clone()
	_, err = clone.Append(earn("t2", "u1", 10, time.Second))
	require.NoError(t, err)

	require.Equal(t, 1, log.Len())
	require.Equal(t, 2, clone.Len())

	_, err = log.Append(earn("t9", "u1", 10, time.Second))
	require.NoError(t, err)
	require.Equal(t, "t2", clone.All()[1].ID)
	require.Equal(t, "t9", log.All()[1].ID)
}

func TestJSONRoundTrip(t *testing.T) {
	log := NewLog()
	_, err := log.Append(earn("t1", "u1", 10, 0))
	require.NoError(t, err)
	_, err = log.Append(Transaction{
		ID: "t2", UserID: "u1", Type: TypeRedeem, Points: 5, RewardID: "r1",
		Description: "Redeemed: Sticker", Timestamp: epoch.Add(1500 * time.Nanosecond),
	})
	require.NoError(t, err)

	raw, err := json.Marshal(log)
	require.NoError(t, err)

	restored := NewLog()
	require.NoError(t, json.Unmarshal(raw, restored))
	require.Equal(t, log.All(), restored.All())

	ok, _ := restored.VerifyChain("u1")
	require.True(t, ok)

	next, err := restored.Append(earn("t3", "u1", 1, time.Hour))
	require.NoError(t, err)
	require.Equal(t, log.All()[1].Hash, next.PreviousHash)
}

func TestUnmarshalKeepsAppendOrder(t *testing.T) {
	log := NewLog()
	for _, tx := range []Transaction{
		earn("t1", "u1", 5, 0),
		earn("t2", "u1", 5, 2*time.Hour),
		earn("t3", "u1", 5, time.Hour),
	} {
		_, err := log.Append(tx)
		require.NoError(t, err)
	}

	raw, err := json.Marshal(log)
	require.NoError(t, err)

	restored := NewLog()
	require.NoError(t, json.Unmarshal(raw, restored))
	require.Equal(t, []string{"t1", "t2", "t3"}, txIDs(restored.All()))

	ok, broken := restored.VerifyChain("u1")
	require.True(t, ok, broken)

	next, err := restored.Append(earn("t4", "u1", 1, 3*time.Hour))
	require.NoError(t, err)
	require.Equal(t, log.All()[2].Hash, next.PreviousHash)
}

func TestUnmarshalReversesNewestFirst(t *testing.T) {
	raw := `[
		{"id":"t2","userId":"u1","type":"earn","points":5,"description":"b","timestamp":"2024-05-01T10:00:00Z"},
		{"id":"t1","userId":"u1","type":"earn","points":5,"description":"a","timestamp":"2024-05-01T09:00:00Z"}
	]`

	log := NewLog()
	require.NoError(t, json.Unmarshal([]byte(raw), log))
	require.Equal(t, "t1", log.All()[0].ID)

	last, ok := log.Last()
	require.True(t, ok)
	require.Equal(t, "t2", last.ID)
}

func TestMarshalEmpty(t *testing.T) {
	raw, err := json.Marshal(NewLog())
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(raw))
}

func TestPage(t *testing.T) {
	log := NewLog()
	for i := 0; i < 5; i++ {
		_, err := log.Append(earn(fmt.Sprintf("t%d", i), "u1", 10, time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	page, err := log.Page("u1", pagination.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, "t4", page.Data[0].ID)
	require.True(t, page.PageInfo.HasMore)

	page, err = log.Page("u1", pagination.Pagination{Limit: 2, Cursor: page.PageInfo.NextCursor})
	require.NoError(t, err)
	require.Equal(t, "t2", page.Data[0].ID)
	require.True(t, page.PageInfo.HasMore)

	page, err = log.Page("u1", pagination.Pagination{Limit: 2, Cursor: page.PageInfo.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "t0", page.Data[0].ID)
	require.False(t, page.PageInfo.HasMore)

	stale, err := pagination.EncodeCursor(pagination.Cursor{ID: "missing"})
	require.NoError(t, err)
	_, err = log.Page("u1", pagination.Pagination{Cursor: stale})
	require.ErrorIs(t, err, pagination.ErrInvalidCursor)
}

func txIDs(txs []Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}
