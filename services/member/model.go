package member

import (
	"strings"
	"time"

	"scaleplus-loyalty/pkg/errutil"
)

var (
	ErrUserNotFound   = errutil.Define(errutil.StatusNotFound, "USER_NOT_FOUND", "user not found")
	ErrDuplicateEmail = errutil.Define(errutil.StatusConflict, "DUPLICATE_EMAIL", "email already registered")
	ErrInvalidProfile = errutil.Define(errutil.StatusValidationFailed, "INVALID_PROFILE", "invalid profile")
	ErrInvalidPoints  = errutil.Define(errutil.StatusValidationFailed, "INVALID_POINTS", "invalid points balance")
)

type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Points           int64      `json:"points"`
	TierID           string     `json:"tierId"`
	IsAdmin          bool       `json:"isAdmin,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	RegistrationDate *time.Time `json:"registrationDate,omitempty"`
	ProfileImageURL  string     `json:"profileImageUrl,omitempty"`
}

// Profile is the caller-editable part of a user. Nil fields are left as is.
type Profile struct {
	Name            *string
	Email           *string
	Phone           *string
	ProfileImageURL *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) clone() User {
	if u.RegistrationDate != nil {
		t := *u.RegistrationDate
		u.RegistrationDate = &t
	}
	return u
}
