package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIDPrefixedAndUnique(t *testing.T) {
	node, err := NewNode(1)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := node.NewID(PrefixTransaction)
		require.True(t, strings.HasPrefix(id, "tx_"))
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestNewNodeRejectsOutOfRange(t *testing.T) {
	_, err := NewNode(5000)
	require.Error(t, err)
}
