package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"usersvc/cmd/internal/envelope"
)

// UpdatedAtLayout is RFC 3339 in UTC with millisecond precision.
const UpdatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNilStore is returned by NewService without a store.
var ErrNilStore = errors.New("profile: nil store")

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the server clock used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// Service runs the profile operations against a Store.
type Service struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// NewService constructs a Service backed by store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	s := &Service{store: store, now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Upsert stores p and returns the stored profile.
//
// A non-zero package tier replaces the access permissions with the tier's set; tier 0 (or
// absent) leaves them as supplied. updatedAt is always stamped with the server clock.
func (s *Service) Upsert(ctx context.Context, p Profile) envelope.Envelope[Profile] {
	p = p.Clone()
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return envelope.Failf[Profile](envelope.CodeInvalidRequest, "Profile id is required")
	}

	if p.PackageTier != 0 {
		p.AccessPermissions = PermissionsForTier(p.PackageTier)
	}
	p.UpdatedAt = s.now().UTC().Format(UpdatedAtLayout)

	if err := s.store.Put(ctx, p); err != nil {
		s.log.ErrorContext(ctx, "profile.save.fail", "err", err)
		return envelope.Failf[Profile](envelope.CodeDynamoDBError, "Failed to save user profile")
	}
	return envelope.OK(p)
}

// Fetch returns the profile stored under id. An unknown id is a success with an empty profile.
func (s *Service) Fetch(ctx context.Context, id string) envelope.Envelope[Profile] {
	id = strings.TrimSpace(id)
	if id == "" {
		return envelope.Failf[Profile](envelope.CodeInvalidRequest, "Profile id is required")
	}

	p, found, err := s.store.Get(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "profile.fetch.fail", "err", err)
		return envelope.Failf[Profile](envelope.CodeDynamoDBError, "Failed to fetch user profile")
	}
	if !found {
		return envelope.OK(Profile{})
	}
	return envelope.OK(p)
}
