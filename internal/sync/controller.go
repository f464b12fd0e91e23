// Package sync ties the repository into the projection and exposes the
// result as observable state: the current page's users, totals, page
// numbers, a pagination pulse and a terminal error channel.
package sync

import (
	"context"
	gosync "sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"userdir/internal/domain/user"
	"userdir/internal/projection"
	apperrors "userdir/pkg/errors"
	"userdir/pkg/observable"
)

// Repository is the slice of the user repository the controller drives.
type Repository interface {
	GetAllUsers(ctx context.Context) ([]user.User, int, error)
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	DeleteUser(ctx context.Context, u user.User) error
}

// EmailIndex answers the email-uniqueness query against the local store.
type EmailIndex interface {
	CountWithEmail(ctx context.Context, email string, excludingID int64) (int64, error)
}

// Controller owns and exclusively mutates the projection. Repository
// calls run on the caller's goroutine; callers that must stay responsive
// invoke the I/O methods from their own goroutines and watch the
// observables.
//
// Two in-flight operations have no defined completion order: the last
// writer to the projection wins. That matches the source behavior and is
// left as-is rather than adding cancellation.
type Controller struct {
	repo     Repository
	emails   EmailIndex
	log      *zap.Logger
	validate *validator.Validate
	pageSize int

	mu          gosync.Mutex
	proj        *projection.Projection
	currentPage int
	state       State

	users             *observable.Value[[]user.User]
	totalUsers        *observable.Value[int]
	totalPages        *observable.Value[int]
	currentPageObs    *observable.Value[int]
	paginationChanged *observable.Value[bool]
	errs              *observable.Value[string]
	states            *observable.Value[State]
}

// New creates a controller with the given page size.
func New(repo Repository, emails EmailIndex, pageSize int, log *zap.Logger) *Controller {
	return &Controller{
		repo:              repo,
		emails:            emails,
		log:               log,
		validate:          validator.New(),
		pageSize:          pageSize,
		proj:              projection.New(),
		currentPage:       1,
		state:             StateIdle,
		users:             &observable.Value[[]user.User]{},
		totalUsers:        &observable.Value[int]{},
		totalPages:        &observable.Value[int]{},
		currentPageObs:    observable.New(1),
		paginationChanged: &observable.Value[bool]{},
		errs:              &observable.Value[string]{},
		states:            observable.New(StateIdle),
	}
}

// Users is the observable slice of the current page.
func (c *Controller) Users() *observable.Value[[]user.User] { return c.users }

// TotalUsers is the observable size of the filtered collection.
func (c *Controller) TotalUsers() *observable.Value[int] { return c.totalUsers }

// TotalPages is the observable page count.
func (c *Controller) TotalPages() *observable.Value[int] { return c.totalPages }

// CurrentPage is the observable 1-based current page number.
func (c *Controller) CurrentPage() *observable.Value[int] { return c.currentPageObs }

// PaginationChanged pulses after every operation that may have moved
// pagination metadata.
func (c *Controller) PaginationChanged() *observable.Value[bool] { return c.paginationChanged }

// Errors is the terminal error message channel.
func (c *Controller) Errors() *observable.Value[string] { return c.errs }

// States is the observable state machine phase.
func (c *Controller) States() *observable.Value[State] { return c.states }

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.states.Set(s)
}

// fail publishes a terminal error event and moves to StateError. The
// projection is left in its last-known-good state.
func (c *Controller) fail(op string, err error) error {
	c.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	c.errs.Set(err.Error())
	c.setState(StateError)
	return err
}

// LoadAll loads the full collection through the repository (cache-first,
// else full remote pull), rebuilds the projection wholesale and forces
// the current page back to 1.
func (c *Controller) LoadAll(ctx context.Context) error {
	c.setState(StateLoading)

	users, total, err := c.repo.GetAllUsers(ctx)
	if err != nil {
		return c.fail("load all", err)
	}
	c.log.Info("collection loaded", zap.Int("total", total))

	c.mu.Lock()
	c.proj.SetMaster(users)
	c.publishPaginationLocked()
	c.publishPageLocked(1)
	c.mu.Unlock()

	c.paginationChanged.Set(true)
	c.setState(StateReady)
	return nil
}

// Search recomputes the filtered view for query and forces the current
// page back to 1. It is synchronous: no I/O, no Loading transition, and
// the empty query restores the full master list without re-hitting the
// network or the cache.
func (c *Controller) Search(query string) {
	c.mu.Lock()
	c.proj.Search(query)
	c.log.Debug("search applied", zap.String("query", query), zap.Int("matches", c.proj.Total()))
	c.publishPaginationLocked()
	c.publishPageLocked(1)
	c.mu.Unlock()

	c.paginationChanged.Set(true)
	c.setState(StateReady)
}

// LoadPage publishes page n of the current projection, clamped to the
// valid range. Purely synchronous.
func (c *Controller) LoadPage(n int) {
	c.mu.Lock()
	c.publishPageLocked(n)
	c.mu.Unlock()
	c.setState(StateReady)
}

// Create validates u locally (names, email format, email uniqueness),
// creates it through the repository, places it at the head of the master
// list and re-validates the page index.
func (c *Controller) Create(ctx context.Context, u user.User) error {
	u, err := c.validateUser(u)
	if err != nil {
		return c.fail("create user", err)
	}
	if err := c.checkEmailUnique(ctx, u.Email, 0); err != nil {
		return c.fail("create user", err)
	}
	if u.Avatar == "" {
		u.Avatar = user.DefaultAvatar
	}

	c.setState(StateMutating)
	created, err := c.repo.CreateUser(ctx, u)
	if err != nil {
		return c.fail("create user", err)
	}

	c.mu.Lock()
	c.proj.ApplyInsert(created)
	c.publishPaginationLocked()
	c.adjustPageLocked()
	c.mu.Unlock()

	c.paginationChanged.Set(true)
	c.setState(StateReady)
	return nil
}

// Update validates u, updates it through the repository and patches both
// lists in place. The page the caller was on is kept, clamped to the new
// page count — unlike search and reload, an edit does not reset the
// browsing position.
func (c *Controller) Update(ctx context.Context, u user.User) error {
	// validateUser preserves ID and avatar; only the editable fields are
	// cleaned and checked.
	validated, err := c.validateUser(u)
	if err != nil {
		return c.fail("update user", err)
	}
	if err := c.checkEmailUnique(ctx, validated.Email, validated.ID); err != nil {
		return c.fail("update user", err)
	}

	c.mu.Lock()
	lastKnownPage := c.currentPage
	c.mu.Unlock()

	c.setState(StateMutating)
	updated, err := c.repo.UpdateUser(ctx, validated)
	if err != nil {
		return c.fail("update user", err)
	}

	c.mu.Lock()
	c.proj.ApplyUpdate(updated)
	c.publishPaginationLocked()
	totalPages := c.proj.TotalPages(c.pageSize)
	if lastKnownPage > totalPages {
		lastKnownPage = totalPages
	}
	c.publishPageLocked(lastKnownPage)
	c.mu.Unlock()

	c.paginationChanged.Set(true)
	c.setState(StateReady)
	return nil
}

// Delete removes u through the repository and drops it from both lists.
// If the current page index falls out of range it clamps to the last
// valid page.
func (c *Controller) Delete(ctx context.Context, u user.User) error {
	c.setState(StateMutating)
	if err := c.repo.DeleteUser(ctx, u); err != nil {
		return c.fail("delete user", err)
	}

	c.mu.Lock()
	c.proj.ApplyRemove(u)
	c.publishPaginationLocked()
	c.adjustPageLocked()
	c.mu.Unlock()

	c.paginationChanged.Set(true)
	c.setState(StateReady)
	return nil
}

// IsEmailUnique reports whether email is free among cached users,
// ignoring the record with excludingID (so an edit may keep its own
// email).
func (c *Controller) IsEmailUnique(ctx context.Context, email string, excludingID int64) (bool, error) {
	count, err := c.emails.CountWithEmail(ctx, email, excludingID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (c *Controller) checkEmailUnique(ctx context.Context, email string, excludingID int64) error {
	unique, err := c.IsEmailUnique(ctx, email, excludingID)
	if err != nil {
		return err
	}
	if !unique {
		return apperrors.NewValidationError("email", "email is already taken")
	}
	return nil
}

// publishPaginationLocked publishes the filtered total and page count.
// Callers hold c.mu.
func (c *Controller) publishPaginationLocked() {
	c.totalUsers.Set(c.proj.Total())
	c.totalPages.Set(c.proj.TotalPages(c.pageSize))
}

// publishPageLocked slices and publishes page n, clamped. Callers hold
// c.mu.
func (c *Controller) publishPageLocked(n int) {
	pageUsers, resolved := c.proj.Page(n, c.pageSize)
	c.currentPage = resolved
	c.currentPageObs.Set(resolved)
	c.users.Set(pageUsers)
}

// adjustPageLocked re-validates the current page index after an insert
// or removal: out-of-range indices clamp to the last valid page, an
// empty collection rests on page 1, anything else re-slices in place.
// Callers hold c.mu.
func (c *Controller) adjustPageLocked() {
	start := (c.currentPage - 1) * c.pageSize
	switch {
	case c.proj.Total() == 0:
		c.publishPageLocked(1)
	case start >= c.proj.Total():
		c.publishPageLocked(c.proj.TotalPages(c.pageSize))
	default:
		c.publishPageLocked(c.currentPage)
	}
}
