package projection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/domain/user"
)

func makeUsers(n int) []user.User {
	users := make([]user.User, n)
	for i := range users {
		id := int64(i + 1)
		users[i] = user.User{
			ID:        id,
			Email:     fmt.Sprintf("user%d@example.com", id),
			FirstName: fmt.Sprintf("First%d", id),
			LastName:  fmt.Sprintf("Last%d", id),
		}
	}
	return users
}

func TestSetMaster_ReversesOrder(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(3))

	page, resolved := p.Page(1, 6)
	assert.Equal(t, 1, resolved)
	require.Len(t, page, 3)
	// newest-created-first: the last fetched user leads
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(2), page[1].ID)
	assert.Equal(t, int64(1), page[2].ID)
}

func TestPage_ThirteenUsersPageSizeSix(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(13))

	assert.Equal(t, 3, p.TotalPages(6))
	assert.Equal(t, 13, p.Total())

	page1, resolved := p.Page(1, 6)
	assert.Equal(t, 1, resolved)
	assert.Len(t, page1, 6)

	page3, resolved := p.Page(3, 6)
	assert.Equal(t, 3, resolved)
	assert.Len(t, page3, 1)

	// out-of-range clamps to the last page, never errors or comes back empty
	page4, resolved := p.Page(4, 6)
	assert.Equal(t, 3, resolved)
	assert.Equal(t, page3, page4)

	page0, resolved := p.Page(0, 6)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, page1, page0)
}

func TestTotalPages_NeverBelowOne(t *testing.T) {
	p := New()
	assert.Equal(t, 1, p.TotalPages(6))

	p.SetMaster(makeUsers(1))
	p.Search("no such user")
	assert.Equal(t, 0, p.Total())
	assert.Equal(t, 1, p.TotalPages(6))
}

func TestSearch_MatchesNamesAndEmailCaseInsensitively(t *testing.T) {
	p := New()
	p.SetMaster([]user.User{
		{ID: 1, FirstName: "George", LastName: "Bluth", Email: "george.bluth@example.com"},
		{ID: 2, FirstName: "Janet", LastName: "Weaver", Email: "janet.weaver@example.com"},
		{ID: 3, FirstName: "Emma", LastName: "Wong", Email: "emma.wong@example.com"},
	})

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{name: "first name", query: "JANET", wantIDs: []int64{2}},
		{name: "last name substring", query: "w", wantIDs: []int64{3, 2}},
		{name: "email", query: "bluth@", wantIDs: []int64{1}},
		{name: "no match", query: "zzz", wantIDs: []int64{}},
		{name: "empty matches all", query: "", wantIDs: []int64{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Search(tt.query)
			got := make([]int64, 0, p.Total())
			page, _ := p.Page(1, 100)
			for _, u := range page {
				got = append(got, u.ID)
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestSearch_EmptyQueryRestoresMasterOrder(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(5))

	p.Search("First3")
	assert.Equal(t, 1, p.Total())

	p.Search("")
	assert.Equal(t, 5, p.Total())
	page, _ := p.Page(1, 10)
	for i, u := range page {
		assert.Equal(t, int64(5-i), u.ID)
	}
}

func TestApplyInsert_HeadOfMasterAndQueryGating(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(2))
	p.Search("user1")
	require.Equal(t, 1, p.Total())

	// does not match the active query: master only
	miss := user.User{ID: 3, FirstName: "Nomatch", LastName: "Here", Email: "x@example.com"}
	p.ApplyInsert(miss)
	assert.Equal(t, 3, p.MasterTotal())
	assert.Equal(t, 1, p.Total())

	// matches the query: head of filtered too
	hit := user.User{ID: 4, FirstName: "Also", LastName: "User1ish", Email: "user1.twin@example.com"}
	p.ApplyInsert(hit)
	assert.Equal(t, 4, p.MasterTotal())
	page, _ := p.Page(1, 10)
	require.Equal(t, 2, p.Total())
	assert.Equal(t, int64(4), page[0].ID)
}

func TestApplyUpdate_InPlaceWithoutReordering(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(4))

	p.ApplyUpdate(user.User{ID: 2, FirstName: "Edited", LastName: "Name", Email: "edited@example.com"})

	page, _ := p.Page(1, 10)
	require.Len(t, page, 4)
	assert.Equal(t, []int64{4, 3, 2, 1}, []int64{page[0].ID, page[1].ID, page[2].ID, page[3].ID})
	assert.Equal(t, "Edited", page[2].FirstName)
	assert.Equal(t, "edited@example.com", page[2].Email)
}

func TestApplyRemove_ByIdentifierNotIdentity(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(3))

	// only the id matters
	p.ApplyRemove(user.User{ID: 2, FirstName: "totally", LastName: "different", Email: "fields@example.com"})

	assert.Equal(t, 2, p.MasterTotal())
	assert.Equal(t, 2, p.Total())
	page, _ := p.Page(1, 10)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(1), page[1].ID)
}

func TestPage_ReturnsDefensiveCopy(t *testing.T) {
	p := New()
	p.SetMaster(makeUsers(2))

	page, _ := p.Page(1, 10)
	page[0].FirstName = "mutated"

	again, _ := p.Page(1, 10)
	assert.NotEqual(t, "mutated", again[0].FirstName)
}
