package profile

import (
	"context"
	"errors"
)

// ErrInvalidInput is returned by stores for a profile without an id.
var ErrInvalidInput = errors.New("profile: invalid input")

// Store persists profiles by id.
//
// Requirements:
//   - Put replaces the whole record for p.ID
//   - Get reports absence with found=false and a nil error
type Store interface {
	Put(ctx context.Context, p Profile) error
	Get(ctx context.Context, id string) (p Profile, found bool, err error)
	Close() error
}
