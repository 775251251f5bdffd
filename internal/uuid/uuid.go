// Package uuid wraps google/uuid so that UUIDs can be bound from query
// strings and URI parameters by gin.
package uuid

import (
	"errors"

	google_uuid "github.com/google/uuid"
)

var ErrInvalid = errors.New("the value is not a valid UUID")

type UUID struct {
	google_uuid.UUID
}

var Nil UUID

// UnmarshalParam implements gin's BindUnmarshaler. An empty string is
// the nil UUID.
func (u *UUID) UnmarshalParam(p string) error {
	if p == "" {
		*u = Nil
		return nil
	}

	parsed, err := google_uuid.Parse(p)
	if err != nil {
		return ErrInvalid
	}

	*u = UUID{parsed}
	return nil
}

// IsNil reports if the UUID is the nil UUID.
func (u UUID) IsNil() bool {
	return u.UUID == google_uuid.Nil
}

// Pointer returns a pointer to the UUID, or nil for the nil UUID.
func (u UUID) Pointer() *google_uuid.UUID {
	if u.IsNil() {
		return nil
	}

	id := u.UUID
	return &id
}
