package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	encoded, err := EncodeCursor(Cursor{Timestamp: "2024-01-01T00:00:00Z", ID: "tx_1"})
	require.NoError(t, err)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, "tx_1", decoded.ID)
	require.Equal(t, "2024-01-01T00:00:00Z", decoded.Timestamp)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, DefaultLimit, Pagination{}.Normalize().Limit)
	require.Equal(t, MaxLimit, Pagination{Limit: 1000}.Normalize().Limit)
	require.Equal(t, 5, Pagination{Limit: 5}.Normalize().Limit)
}

func TestBuildPageInfo(t *testing.T) {
	extract := func(s string) Cursor { return Cursor{ID: s} }

	data, info, err := BuildPageInfo([]string{"a", "b", "c"}, 2, extract)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, data)
	require.True(t, info.HasMore)

	next, err := DecodeCursor(info.NextCursor)
	require.NoError(t, err)
	require.Equal(t, "b", next.ID)

	data, info, err = BuildPageInfo([]string{"a"}, 2, extract)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, data)
	require.False(t, info.HasMore)
	require.Empty(t, info.NextCursor)
}
