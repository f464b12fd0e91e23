package user

import "strings"

// DefaultAvatar is the sentinel avatar reference used when a user has no
// custom avatar.
const DefaultAvatar = "https://static.productionready.io/images/smiley-cyrus.jpg"

// User represents a user entity in the directory.
type User struct {
	ID        int64  `json:"id"`         // ID is the unique identifier for the user
	Email     string `json:"email"`      // Email is the unique email address of the user
	FirstName string `json:"first_name"` // FirstName is the user's given name
	LastName  string `json:"last_name"`  // LastName is the user's family name
	Avatar    string `json:"avatar"`     // Avatar is a URI reference to the user's picture
}

// Matches reports whether the user matches a search query. The query is
// compared case-insensitively as a substring of the first name, last name
// or email. The empty query matches every user.
func (u User) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.FirstName), q) ||
		strings.Contains(strings.ToLower(u.LastName), q) ||
		strings.Contains(strings.ToLower(u.Email), q)
}
