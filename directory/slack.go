package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nlopes/slack"
)

// SlackAPI is the subset of the Slack client the directory needs.
type SlackAPI interface {
	GetUsersContext(ctx context.Context) ([]slack.User, error)
	GetChannelsContext(ctx context.Context, excludeArchived bool, options ...slack.GetChannelsOption) ([]slack.Channel, error)
}

// Slack is a Lookup backed by a snapshot of the workspace directory.
// Refresh replaces the snapshot wholesale; reads in flight keep seeing
// the old one.
type Slack struct {
	api SlackAPI

	mu       sync.RWMutex
	users    map[string]User
	channels map[string][]string
}

// NewSlack constructs an empty *Slack. Call Refresh before serving.
func NewSlack(api SlackAPI) *Slack {
	return &Slack{
		api:      api,
		users:    make(map[string]User),
		channels: make(map[string][]string),
	}
}

// Refresh re-fetches users and channel rosters. Deleted users and bots
// are left out.
func (s *Slack) Refresh(ctx context.Context) error {
	slackUsers, err := s.api.GetUsersContext(ctx)
	if err != nil {
		return fmt.Errorf("fetching users: %w", err)
	}
	slackChannels, err := s.api.GetChannelsContext(ctx, true)
	if err != nil {
		return fmt.Errorf("fetching channels: %w", err)
	}

	users := make(map[string]User, len(slackUsers))
	for _, u := range slackUsers {
		if u.Deleted || u.IsBot {
			continue
		}
		users[u.ID] = User{
			ID:    u.ID,
			Name:  displayName(u),
			Phone: u.Profile.Phone,
		}
	}

	channels := make(map[string][]string, len(slackChannels))
	for _, c := range slackChannels {
		channels[strings.ToLower(c.Name)] = c.Members
	}

	s.mu.Lock()
	s.users = users
	s.channels = channels
	s.mu.Unlock()
	return nil
}

func displayName(u slack.User) string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	if u.RealName != "" {
		return u.RealName
	}
	return u.Name
}

func (s *Slack) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Slack) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users
}

func (s *Slack) ChannelMembers(name string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, ok := s.channels[strings.ToLower(name)]
	return members, ok
}
