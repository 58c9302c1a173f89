package errutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var errThingMissing = Define(StatusNotFound, "THING_NOT_FOUND", "thing not found")

func TestSentinelMatchesAfterDetails(t *testing.T) {
	err := errThingMissing.With(WithDetail("thing_id", "t-1"))

	require.ErrorIs(t, err, errThingMissing)
	require.Equal(t, "[NOT_FOUND] thing not found (thing_id: t-1)", err.Error())

	wrapped := fmt.Errorf("lookup: %w", err)
	require.ErrorIs(t, wrapped, errThingMissing)
	require.Equal(t, StatusNotFound, StatusOf(wrapped))
}

func TestSentinelDoesNotMatchOtherReason(t *testing.T) {
	other := Define(StatusNotFound, "OTHER_NOT_FOUND", "other not found")
	require.False(t, errors.Is(errThingMissing.With(), other))

	plain := New(StatusNotFound, "thing not found")
	require.False(t, errors.Is(plain, errThingMissing))
}

func TestWithDoesNotShareDetails(t *testing.T) {
	base := Define(StatusBadRequest, "BAD", "bad")
	first := base.With(WithDetail("a", "1"))
	second := base.With(WithDetail("b", "2"))

	var be BaseError
	require.True(t, errors.As(first, &be))
	require.Len(t, be.Details, 1)
	require.True(t, errors.As(second, &be))
	require.Len(t, be.Details, 1)
	require.Equal(t, "b", be.Details[0].Field)
}

func TestHelpersCarryCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to persist", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, StatusInternal, StatusOf(err))
	require.Equal(t, 1, StatusOf(err).ExitCode())
	require.Equal(t, StatusUnknown, StatusOf(cause))
}
