// Package projection holds the in-memory master user collection and a
// derived, query-filtered view of it, sliced into fixed-size pages.
// A Projection is not safe for concurrent use; its owner serializes
// access.
package projection

import (
	"userdir/internal/domain/user"
)

// Projection is the master list plus the filtered view for the active
// search query. The filtered list is always a content-filtered,
// order-preserving subset of the master list.
type Projection struct {
	master   []user.User
	filtered []user.User
	query    string
}

// New creates an empty projection.
func New() *Projection {
	return &Projection{}
}

// SetMaster replaces the master list with users in reverse order, so the
// most recently created record comes first, and resets the filtered list
// to the full collection. The active query is cleared.
func (p *Projection) SetMaster(users []user.User) {
	p.master = make([]user.User, len(users))
	for i, u := range users {
		p.master[len(users)-1-i] = u
	}
	p.query = ""
	p.filtered = append([]user.User(nil), p.master...)
}

// Search recomputes the filtered list for query. The empty query
// restores the full master list.
func (p *Projection) Search(query string) {
	p.query = query
	p.filtered = p.filtered[:0]
	for _, u := range p.master {
		if u.Matches(query) {
			p.filtered = append(p.filtered, u)
		}
	}
}

// Query returns the active search query.
func (p *Projection) Query() string {
	return p.query
}

// ApplyInsert places u at the head of the master list. It enters the
// filtered list only when it matches the active query (the empty query
// matches everything).
func (p *Projection) ApplyInsert(u user.User) {
	p.master = append([]user.User{u}, p.master...)
	if u.Matches(p.query) {
		p.filtered = append([]user.User{u}, p.filtered...)
	}
}

// ApplyUpdate replaces the record with u's id in both lists, by
// identifier equality. Positions are preserved.
func (p *Projection) ApplyUpdate(u user.User) {
	replaceByID(p.master, u)
	replaceByID(p.filtered, u)
}

// ApplyRemove removes the record with u's id from both lists.
func (p *Projection) ApplyRemove(u user.User) {
	p.master = removeByID(p.master, u.ID)
	p.filtered = removeByID(p.filtered, u.ID)
}

func replaceByID(list []user.User, u user.User) {
	for i := range list {
		if list[i].ID == u.ID {
			list[i] = u
			return
		}
	}
}

func removeByID(list []user.User, id int64) []user.User {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Page returns a copy of the n-th page of the filtered list together
// with the resolved page number. n is clamped to [1, TotalPages]; when
// users exist a clamped page is never empty.
func (p *Projection) Page(n, pageSize int) ([]user.User, int) {
	totalPages := p.TotalPages(pageSize)
	if n < 1 {
		n = 1
	}
	if n > totalPages {
		n = totalPages
	}

	start := (n - 1) * pageSize
	if start > len(p.filtered) {
		start = len(p.filtered)
	}
	end := start + pageSize
	if end > len(p.filtered) {
		end = len(p.filtered)
	}

	return append([]user.User(nil), p.filtered[start:end]...), n
}

// TotalPages returns ceil(total/pageSize), never less than 1 even for an
// empty collection.
func (p *Projection) TotalPages(pageSize int) int {
	pages := (len(p.filtered) + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Total returns the size of the filtered list.
func (p *Projection) Total() int {
	return len(p.filtered)
}

// MasterTotal returns the size of the master list.
func (p *Projection) MasterTotal() int {
	return len(p.master)
}
