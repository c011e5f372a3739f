package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tambayteam/tambay/mealday"
	"github.com/tambayteam/tambay/store"
)

// Meal RSVP sets are evicted after a month rather than accumulating
// forever.
const rsvpTTL = 30 * 24 * time.Hour

// meals handles the RSVP toggle command. A count request short-circuits
// every mutation, even when meal tags co-occur with it; otherwise each
// recognized meal tag adds the caller to (or, with cancel, removes the
// caller from) that meal's set for today.
func (b *Bot) meals(ctx context.Context, req Request) (string, error) {
	day := mealday.Key(b.now(), b.loc)

	if req.Events.Has(TagCount) {
		return b.mealCount(ctx, day)
	}

	cancel := req.Events.Has(TagCancel)
	for _, meal := range mealTags {
		if !req.Events.Has(meal) {
			continue
		}
		key := store.Key(string(meal), day)
		if cancel {
			if err := b.store.RemoveMember(ctx, key, req.UserID); err != nil {
				return "", fmt.Errorf("removing %s rsvp: %w", meal, err)
			}
			continue
		}
		if err := b.store.AddMember(ctx, key, req.UserID); err != nil {
			return "", fmt.Errorf("adding %s rsvp: %w", meal, err)
		}
		if err := b.store.Expire(ctx, key, rsvpTTL); err != nil {
			b.log.Warnw("setting rsvp expiry", "key", key, "error", err)
		}
	}

	// RSVP toggles are silent: nothing is echoed back into the channel.
	return "", nil
}

func (b *Bot) mealCount(ctx context.Context, day string) (string, error) {
	var sb strings.Builder
	for _, meal := range mealTags {
		members, err := b.store.Members(ctx, store.Key(string(meal), day))
		if err != nil {
			return "", fmt.Errorf("reading %s rsvps: %w", meal, err)
		}
		fmt.Fprintf(&sb, "%s: %d\n", title(string(meal)), len(members))
		if names := b.names(members); len(names) > 0 {
			sb.WriteString(strings.Join(names, ", ") + "\n")
		}
	}
	return sb.String(), nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
