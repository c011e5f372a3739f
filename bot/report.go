package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/tambayteam/tambay/mealday"
	"github.com/tambayteam/tambay/store"
)

// Report relays today's RSVP counts for tomorrow's meal plan through
// the SMS gateway. On a skipped weekday it does nothing and still
// reports success. Send failures are logged and never fail the report.
func (b *Bot) Report(ctx context.Context) error {
	now := b.now()
	if b.skip.Skip(now, b.loc) {
		b.log.Infow("report skipped", "weekday", now.In(b.loc).Weekday().String())
		return nil
	}

	day := mealday.Key(now, b.loc)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Meal count for %s:\n", mealday.NextWeekday(now, b.loc))
	for _, meal := range mealTags {
		members, err := b.store.Members(ctx, store.Key(string(meal), day))
		if err != nil {
			return fmt.Errorf("reading %s rsvps: %w", meal, err)
		}
		fmt.Fprintf(&sb, "%s: %d\n", title(string(meal)), countWithRegulars(members, b.alwaysCount))
	}
	message := strings.TrimSpace(sb.String())

	for _, number := range b.recipients {
		if err := b.send(ctx, number, message); err != nil {
			b.log.Warnw("sending report", "recipient", number, "error", err)
		}
	}
	return nil
}

// countWithRegulars counts members unioned with the always-counted
// ids: the people who always eat but never RSVP.
func countWithRegulars(members, regulars []string) int {
	seen := make(map[string]bool, len(members)+len(regulars))
	for _, id := range members {
		seen[id] = true
	}
	for _, id := range regulars {
		seen[id] = true
	}
	return len(seen)
}
