// Package repository decides between the local cache and a full remote
// pull, and mirrors every successful mutation into the cache.
package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"userdir/internal/domain/user"
	"userdir/internal/store"
)

// RemoteAPI is the slice of the remote client the repository needs.
type RemoteAPI interface {
	ListUsers(ctx context.Context, page, perPage int) ([]user.User, error)
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, id int64, u user.User) (user.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// LoadPhase is the one-shot state of the cache-vs-network decision.
type LoadPhase int32

const (
	// PhaseNotChecked means the cache has not been inspected yet; the
	// next GetAllUsers performs the check and, if needed, the full pull.
	PhaseNotChecked LoadPhase = iota
	// PhaseChecked means the decision was made; every later GetAllUsers
	// serves the cache directly. The phase never transitions back.
	PhaseChecked
)

// UserRepository keeps the remote collection and the local cache
// consistent. Aside from the one-shot load phase it is stateless.
//
// Known limitation, preserved deliberately: the full pull happens at
// most once per repository lifetime, so the cache can permanently
// diverge from the remote if the server is mutated out-of-band after
// the first pull. Mutations issued through this repository are tracked
// incrementally and do not suffer from this.
type UserRepository struct {
	remote  RemoteAPI
	store   store.Store
	log     *zap.Logger
	perPage int

	phase LoadPhase
	group singleflight.Group
}

// New creates a UserRepository in PhaseNotChecked. perPage is the remote
// page size used for the full pull.
func New(remote RemoteAPI, st store.Store, perPage int, log *zap.Logger) *UserRepository {
	return &UserRepository{
		remote:  remote,
		store:   st,
		log:     log,
		perPage: perPage,
		phase:   PhaseNotChecked,
	}
}

// GetAllUsers returns the full user collection and its size.
//
// On the first call per repository lifetime the cache is inspected: if
// empty, the whole remote collection is pulled page by page and the
// cache is replaced wholesale; otherwise the cache wins. Every later
// call serves the cache without re-checking. The phase flips to
// PhaseChecked when the first call begins, not when it succeeds, so a
// failed first pull leaves an empty cache that later calls will trust —
// this mirrors the original behavior and is recoverable only by
// constructing a fresh repository.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]user.User, int, error) {
	// singleflight collapses concurrent first loads into one pull.
	v, err, _ := r.group.Do("get-all", func() (any, error) {
		if r.phase == PhaseNotChecked {
			r.phase = PhaseChecked
			return r.checkAndFetch(ctx)
		}
		return r.store.GetAll(ctx)
	})
	if err != nil {
		return nil, 0, err
	}

	users := v.([]user.User)
	return users, len(users), nil
}

// checkAndFetch serves the cache when it holds anything, otherwise runs
// the full remote pull and replaces the cache with its result.
func (r *UserRepository) checkAndFetch(ctx context.Context) ([]user.User, error) {
	local, err := r.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching users: %w", err)
	}
	if len(local) > 0 {
		r.log.Info("serving users from cache", zap.Int("count", len(local)))
		return local, nil
	}

	users, err := r.fetchAllPages(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.store.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("error replacing cache: %w", err)
	}
	if err := r.store.InsertAll(ctx, users); err != nil {
		return nil, fmt.Errorf("error replacing cache: %w", err)
	}

	r.log.Info("full remote pull complete", zap.Int("count", len(users)))
	return users, nil
}

// fetchAllPages pulls pages starting at 1 until a page comes back
// shorter than perPage, which signals the end of the collection.
func (r *UserRepository) fetchAllPages(ctx context.Context) ([]user.User, error) {
	var all []user.User
	for page := 1; ; page++ {
		users, err := r.remote.ListUsers(ctx, page, r.perPage)
		if err != nil {
			return nil, fmt.Errorf("error fetching users: %w", err)
		}

		all = append(all, users...)
		r.log.Debug("fetched remote page", zap.Int("page", page), zap.Int("count", len(users)))

		if len(users) < r.perPage {
			return all, nil
		}
	}
}

// CreateUser creates the user remotely, assigns the next local id
// (the remote never returns one) and writes the record to the cache.
func (r *UserRepository) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	created, err := r.remote.CreateUser(ctx, u)
	if err != nil {
		return user.User{}, fmt.Errorf("error creating user: %w", err)
	}

	maxID, err := r.store.MaxID(ctx)
	if err != nil {
		return user.User{}, fmt.Errorf("error creating user: %w", err)
	}
	created.ID = maxID + 1

	if err := r.store.Insert(ctx, created); err != nil {
		return user.User{}, fmt.Errorf("error creating user: %w", err)
	}

	r.log.Info("user created", zap.Int64("id", created.ID), zap.String("email", created.Email))
	return created, nil
}

// UpdateUser updates the user remotely, merges only the fields the
// remote confirmed (names and email) into u — id and avatar stay as the
// caller holds them — and persists the merged record.
func (r *UserRepository) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	confirmed, err := r.remote.UpdateUser(ctx, u.ID, u)
	if err != nil {
		return user.User{}, fmt.Errorf("error updating user: %w", err)
	}

	u.FirstName = confirmed.FirstName
	u.LastName = confirmed.LastName
	u.Email = confirmed.Email

	if err := r.store.Update(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("error updating user: %w", err)
	}

	r.log.Info("user updated", zap.Int64("id", u.ID))
	return u, nil
}

// DeleteUser deletes the user remotely and removes it from the cache.
func (r *UserRepository) DeleteUser(ctx context.Context, u user.User) error {
	if err := r.remote.DeleteUser(ctx, u.ID); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	if err := r.store.Delete(ctx, u); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	r.log.Info("user deleted", zap.Int64("id", u.ID))
	return nil
}
