package member

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seeded() *Roster {
	registered := time.Date(2023, 1, 15, 10, 0, 0, 0, time.UTC)
	return NewRoster(
		User{ID: "user1", Name: "Alice", Email: "alice@example.com", Points: 250, TierID: "bronze", Phone: "555-0101", RegistrationDate: &registered},
		User{ID: "user2", Name: "Bob The Builder", Email: "bob@example.com", Points: 1200, TierID: "silver"},
	)
}

func TestGet(t *testing.T) {
	r := seeded()

	u, err := r.Get("user1")
	require.NoError(t, err)
	require.Equal(t, "Alice", u.Name)

	_, err = r.Get("ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegisterRejectsDuplicateEmailIgnoringCase(t *testing.T) {
	r := seeded()

	_, err := r.Register(User{ID: "user9", Name: "Imposter", Email: "  ALICE@Example.com"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.Equal(t, 2, r.Len())
}

func TestRegisterValidation(t *testing.T) {
	r := seeded()

	_, err := r.Register(User{ID: "user9", Email: "new@example.com"})
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = r.Register(User{ID: "user9", Name: "New"})
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = r.Register(User{ID: "user1", Name: "Again", Email: "other@example.com"})
	require.ErrorIs(t, err, ErrInvalidProfile)

	u, err := r.Register(User{ID: "user9", Name: "New", Email: " new@example.com ", TierID: "bronze"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)

	found, ok := r.FindByEmail("NEW@example.com")
	require.True(t, ok)
	require.Equal(t, "user9", found.ID)
}

func TestUpdateProfile(t *testing.T) {
	r := seeded()

	u, err := r.UpdateProfile("user1", Profile{Name: strPtr("Alice Cooper"), Phone: strPtr("555-0000")})
	require.NoError(t, err)
	require.Equal(t, "Alice Cooper", u.Name)
	require.Equal(t, "555-0000", u.Phone)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, int64(250), u.Points)

	_, err = r.UpdateProfile("user1", Profile{Email: strPtr("BOB@example.com")})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	u, err = r.UpdateProfile("user1", Profile{Email: strPtr("ALICE@example.com")})
	require.NoError(t, err)
	require.Equal(t, "ALICE@example.com", u.Email)

	_, err = r.UpdateProfile("user1", Profile{Name: strPtr(" ")})
	require.ErrorIs(t, err, ErrInvalidProfile)

	_, err = r.UpdateProfile("ghost", Profile{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetBalance(t *testing.T) {
	r := seeded()

	u, err := r.SetBalance("user1", 600, "silver")
	require.NoError(t, err)
	require.Equal(t, int64(600), u.Points)
	require.Equal(t, "silver", u.TierID)

	_, err = r.SetBalance("user1", -1, "bronze")
	require.ErrorIs(t, err, ErrInvalidPoints)

	_, err = r.SetBalance("ghost", 1, "bronze")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCloneIsIndependent(t *testing.T) {
	r := seeded()
	c := r.Clone()

	_, err := c.SetBalance("user1", 9999, "platinum")
	require.NoError(t, err)

	u, _ := r.Get("user1")
	require.Equal(t, int64(250), u.Points)
}

func TestJSONRoundTrip(t *testing.T) {
	r := seeded()

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"registrationDate":"2023-01-15T10:00:00Z"`)
	require.Contains(t, string(raw), `"tierId":"bronze"`)

	restored := NewRoster()
	require.NoError(t, json.Unmarshal(raw, restored))
	require.Equal(t, r.List(), restored.List())
}
