package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tambayteam/tambay/store"
)

const (
	monitoNS     = "monito_monita"
	numberPrefix = "63"
)

// monito handles the gift-pairing command. set_number short-circuits
// the other branches even when their tags co-occur.
func (b *Bot) monito(ctx context.Context, req Request) (string, error) {
	switch {
	case req.Events.Has(TagSetNumber):
		return b.setNumber(ctx, req)
	case req.Events.Has(TagDraw):
		return b.draw(ctx)
	case req.Events.Has(TagSend):
		return b.sendPairings(ctx)
	}
	return "", nil
}

func (b *Bot) setNumber(ctx context.Context, req Request) (string, error) {
	number := firstNumber(req.Tokens)
	if number == "" {
		return "No number starting with " + numberPrefix + " found.", nil
	}
	key := store.Key(monitoNS, "number", req.UserID)
	if err := b.store.SetScalar(ctx, key, number); err != nil {
		return "", fmt.Errorf("saving number: %w", err)
	}
	return "Number saved: " + number, nil
}

// firstNumber picks the first token carrying the country-code prefix;
// later candidates are ignored.
func firstNumber(tokens []string) string {
	for _, tok := range tokens {
		if strings.HasPrefix(tok, numberPrefix) && len(tok) > len(numberPrefix) {
			return tok
		}
	}
	return ""
}

// draw replaces the pairing assignment with a fresh single cycle over
// the roster: each member gives to the next one, wrapping around, so
// for any roster larger than one nobody draws themselves and everyone
// gives and receives exactly once. If any member has no registered
// number the draw aborts before touching any state.
func (b *Bot) draw(ctx context.Context) (string, error) {
	roster, ok := b.dir.ChannelMembers(b.monitoChannel)
	if !ok || len(roster) == 0 {
		return "", fmt.Errorf("channel %q has no roster", b.monitoChannel)
	}

	for _, id := range roster {
		_, err := b.store.GetScalar(ctx, store.Key(monitoNS, "number", id))
		if errors.Is(err, store.ErrNotFound) {
			return b.displayName(id) + " has not registered a number yet.", nil
		}
		if err != nil {
			return "", fmt.Errorf("reading number: %w", err)
		}
	}

	for _, id := range roster {
		if err := b.store.Delete(ctx, store.Key(monitoNS, "pair", id)); err != nil {
			return "", fmt.Errorf("clearing pairing: %w", err)
		}
	}
	for i, giver := range roster {
		receiver := roster[(i+1)%len(roster)]
		if err := b.store.SetScalar(ctx, store.Key(monitoNS, "pair", giver), receiver); err != nil {
			return "", fmt.Errorf("saving pairing: %w", err)
		}
	}
	// Record who was drawn, so send keeps working when the channel
	// roster changes between draw and send.
	if err := b.store.SetScalar(ctx, store.Key(monitoNS, "roster"), strings.Join(roster, ",")); err != nil {
		return "", fmt.Errorf("saving drawn roster: %w", err)
	}
	return fmt.Sprintf("Drawn! %d pairings ready.", len(roster)), nil
}

// sendPairings texts every giver the name they drew, walking the
// roster recorded at draw time rather than the live channel so givers
// who left the channel afterwards are still notified. No prior draw
// falls through to the default empty reply.
func (b *Bot) sendPairings(ctx context.Context) (string, error) {
	raw, err := b.store.GetScalar(ctx, store.Key(monitoNS, "roster"))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading drawn roster: %w", err)
	}
	roster := strings.Split(raw, ",")

	sent := 0
	for _, giver := range roster {
		receiver, err := b.store.GetScalar(ctx, store.Key(monitoNS, "pair", giver))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading pairing: %w", err)
		}

		number, err := b.store.GetScalar(ctx, store.Key(monitoNS, "number", giver))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading number: %w", err)
		}

		msg := fmt.Sprintf("Monito-monita! You drew %s. Keep it secret.", b.displayName(receiver))
		if err := b.send(ctx, number, msg); err != nil {
			b.log.Warnw("notifying giver", "giver", giver, "error", err)
		}
		sent++
	}

	if sent == 0 {
		return "", nil
	}
	return fmt.Sprintf("Sent %d monito-monita messages.", sent), nil
}
