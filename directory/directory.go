// Package directory resolves user identifiers to identity records and
// channel names to member rosters. It is read-only from the handlers'
// perspective; the surrounding service decides when to refresh it.
package directory

// User is one directory identity record.
type User struct {
	ID    string
	Name  string
	Phone string
}

// Lookup is the read side consumed by the command handlers.
// Implementations may refresh behind the scenes; callers must not
// assume a static snapshot for the process lifetime.
type Lookup interface {
	User(id string) (User, bool)
	Users() []User
	ChannelMembers(name string) ([]string, bool)
}

// Static is a fixed in-memory Lookup for tests and fixtures.
type Static struct {
	ByID     map[string]User
	Channels map[string][]string
}

func (s *Static) User(id string) (User, bool) {
	u, ok := s.ByID[id]
	return u, ok
}

func (s *Static) Users() []User {
	users := make([]User, 0, len(s.ByID))
	for _, u := range s.ByID {
		users = append(users, u)
	}
	return users
}

func (s *Static) ChannelMembers(name string) ([]string, bool) {
	members, ok := s.Channels[name]
	return members, ok
}
