package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tambayteam/tambay/intent"
	"github.com/tambayteam/tambay/store"
)

const utangNS = "utang"

// utang handles the debt-ledger command. A message with no recognized
// tag but carrying amounts and mentions records a split; "owe" combined
// with "self" or "others" lists one side of the requester's ledger.
func (b *Bot) utang(ctx context.Context, req Request) (string, error) {
	if req.Events.Has(TagOwe) {
		switch {
		case req.Events.Has(TagSelf):
			return b.oweList(ctx, req.UserID, true)
		case req.Events.Has(TagOthers):
			return b.oweList(ctx, req.UserID, false)
		}
		return "", nil
	}

	if len(req.Events) == 0 {
		amounts := intent.Amounts(req.Tokens)
		if len(amounts) > 0 && len(req.Mentions) > 0 {
			return b.splitAmounts(ctx, req, amounts)
		}
	}
	return "", nil
}

// splitAmounts splits every amount evenly across the mentioned users
// and increments the directional (requester -> mentioned) entries. The
// two directions of a pair are independent; there is no netting.
func (b *Bot) splitAmounts(ctx context.Context, req Request, amounts []float64) (string, error) {
	var total float64
	for _, a := range amounts {
		total += a
	}
	share := total / float64(len(req.Mentions))

	var sb strings.Builder
	for _, id := range req.Mentions {
		key := store.Key(utangNS, req.UserID, id)
		if _, err := b.store.IncrementScalar(ctx, key, share); err != nil {
			return "", fmt.Errorf("recording utang: %w", err)
		}
		fmt.Fprintf(&sb, "%s: %s\n", b.displayName(id), formatAmount(share))
	}
	return sb.String(), nil
}

// oweList renders one direction of the requester's ledger: with
// owedToMe, everyone holding a positive (other -> requester) entry,
// otherwise everyone the requester holds a positive entry against.
func (b *Bot) oweList(ctx context.Context, userID string, owedToMe bool) (string, error) {
	var lines []string
	for _, u := range b.dir.Users() {
		if u.ID == userID {
			continue
		}
		key := store.Key(utangNS, userID, u.ID)
		if owedToMe {
			key = store.Key(utangNS, u.ID, userID)
		}

		raw, err := b.store.GetScalar(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading utang: %w", err)
		}
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount <= 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", u.Name, formatAmount(amount)))
	}

	if len(lines) == 0 {
		return "No one", nil
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
