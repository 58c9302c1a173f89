package member

import (
	"strings"

	"scaleplus-loyalty/pkg/collection"
	"scaleplus-loyalty/pkg/errutil"
)

// Roster holds the known users. It is not safe for concurrent use.
type Roster struct {
	users *collection.Ordered[User]
}

func NewRoster(users ...User) *Roster {
	r := &Roster{users: collection.New(func(u User) string { return u.ID })}
	for _, u := range users {
		r.users.Set(u.clone())
	}
	return r
}

func notFound(id string) error {
	return ErrUserNotFound.With(errutil.WithDetail("userId", id))
}

func (r *Roster) Get(id string) (User, error) {
	u, ok := r.users.Get(id)
	if !ok {
		return User{}, notFound(id)
	}
	return u.clone(), nil
}

func (r *Roster) List() []User {
	out := r.users.List()
	for i := range out {
		out[i] = out[i].clone()
	}
	return out
}

func (r *Roster) Len() int {
	return r.users.Len()
}

func (r *Roster) FindByEmail(email string) (User, bool) {
	want := normalizeEmail(email)
	if want == "" {
		return User{}, false
	}
	matches := r.users.Filter(func(u User) bool { return normalizeEmail(u.Email) == want })
	if len(matches) == 0 {
		return User{}, false
	}
	return matches[0].clone(), true
}

// Register adds a new user. Emails are unique ignoring case.
func (r *Roster) Register(u User) (User, error) {
	var details []errutil.Detail
	if u.ID == "" {
		details = append(details, errutil.Detail{Field: "id", Message: "is required"})
	}
	if strings.TrimSpace(u.Name) == "" {
		details = append(details, errutil.Detail{Field: "name", Message: "is required"})
	}
	if normalizeEmail(u.Email) == "" {
		details = append(details, errutil.Detail{Field: "email", Message: "is required"})
	}
	if u.Points < 0 {
		details = append(details, errutil.Detail{Field: "points", Message: "must not be negative"})
	}
	if len(details) > 0 {
		return User{}, ErrInvalidProfile.With(errutil.WithDetails(details...))
	}
	if r.users.Has(u.ID) {
		return User{}, ErrInvalidProfile.With(errutil.WithDetail("id", "already exists"))
	}
	if _, taken := r.FindByEmail(u.Email); taken {
		return User{}, ErrDuplicateEmail.With(errutil.WithDetail("email", u.Email))
	}

	u.Email = strings.TrimSpace(u.Email)
	r.users.Set(u.clone())
	return u.clone(), nil
}

// UpdateProfile applies the non-nil fields of p. Points, tier and admin
// status cannot be changed this way.
func (r *Roster) UpdateProfile(id string, p Profile) (User, error) {
	u, ok := r.users.Get(id)
	if !ok {
		return User{}, notFound(id)
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return User{}, ErrInvalidProfile.With(errutil.WithDetail("name", "must not be empty"))
		}
		u.Name = *p.Name
	}
	if p.Email != nil {
		if normalizeEmail(*p.Email) == "" {
			return User{}, ErrInvalidProfile.With(errutil.WithDetail("email", "must not be empty"))
		}
		if other, taken := r.FindByEmail(*p.Email); taken && other.ID != id {
			return User{}, ErrDuplicateEmail.With(errutil.WithDetail("email", *p.Email))
		}
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.ProfileImageURL != nil {
		u.ProfileImageURL = *p.ProfileImageURL
	}

	r.users.Set(u)
	return u.clone(), nil
}

// SetBalance records a new balance and the tier it resolves to.
func (r *Roster) SetBalance(id string, points int64, tierID string) (User, error) {
	u, ok := r.users.Get(id)
	if !ok {
		return User{}, notFound(id)
	}
	if points < 0 {
		return User{}, ErrInvalidPoints.With(errutil.WithDetail("points", "must not be negative"))
	}
	u.Points = points
	u.TierID = tierID
	r.users.Set(u)
	return u.clone(), nil
}

func (r *Roster) Clone() *Roster {
	return &Roster{users: r.users.Clone()}
}

func (r *Roster) MarshalJSON() ([]byte, error) {
	return r.users.MarshalJSON()
}

func (r *Roster) UnmarshalJSON(data []byte) error {
	fresh := NewRoster()
	if err := fresh.users.UnmarshalJSON(data); err != nil {
		return err
	}
	*r = *fresh
	return nil
}
