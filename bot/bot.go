// Package bot implements the command-intent engine: it authenticates
// inbound slash commands, classifies their free-text body into event
// tags, and applies the resulting intent against day-scoped and
// user-scoped aggregates in the store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tambayteam/tambay/directory"
	"github.com/tambayteam/tambay/intent"
	"github.com/tambayteam/tambay/mealday"
	"github.com/tambayteam/tambay/store"
)

// Command identifiers, the stable keys into the shared-secrets table.
const (
	CommandMeals  = "meals"
	CommandUtang  = "utang"
	CommandMonito = "monito"
	CommandReport = "report"
)

// Event tags recognized across the commands.
const (
	TagCount     intent.Tag = "count"
	TagCancel    intent.Tag = "cancel"
	TagLunch     intent.Tag = "lunch"
	TagMerienda  intent.Tag = "merienda"
	TagDinner    intent.Tag = "dinner"
	TagOwe       intent.Tag = "owe"
	TagSelf      intent.Tag = "self"
	TagOthers    intent.Tag = "others"
	TagSetNumber intent.Tag = "set_number"
	TagDraw      intent.Tag = "draw"
	TagSend      intent.Tag = "send"
)

// Keyword tables, one per command.
var commandTables = map[string]intent.Table{
	CommandMeals: {
		TagCount:    {"count", "ilan", "bilang"},
		TagCancel:   {"cancel", "hindi", "wag"},
		TagLunch:    {"lunch", "l", "tanghalian"},
		TagMerienda: {"merienda", "m"},
		TagDinner:   {"dinner", "d", "hapunan"},
	},
	CommandUtang: {
		TagOwe:    {"owe", "utang"},
		TagSelf:   {"me", "akin", "self"},
		TagOthers: {"others", "iba", "nila"},
	},
	CommandMonito: {
		TagSetNumber: {"number", "numero"},
		TagDraw:      {"draw", "bunot"},
		TagSend:      {"send", "padala"},
	},
}

// Mealtimes in render and report order.
var mealTags = []intent.Tag{TagLunch, TagMerienda, TagDinner}

// ErrBadToken is returned when a command's shared secret does not
// match the configured one.
var ErrBadToken = errors.New("bad command token")

// Messenger delivers a text message to a phone number. Sends are
// fire-and-forget from the handlers' perspective: failures are logged,
// never surfaced to the command response.
type Messenger interface {
	Send(ctx context.Context, number, message string) error
}

// Config carries the dependencies and settings for a Bot.
type Config struct {
	Store     store.Store
	Directory directory.Lookup
	Messenger Messenger
	Log       *zap.SugaredLogger

	// Secrets maps command identifiers to their shared secrets.
	Secrets map[string]string

	Location      *time.Location
	SkipDays      []time.Weekday
	AlwaysCount   []string
	Recipients    []string
	MonitoChannel string
	DevMode       bool

	// Now is the clock, defaulting to time.Now.
	Now func() time.Time
}

// Bot holds no per-request state; every request is independently
// authenticated and self-contained, with all shared state in the store.
type Bot struct {
	store         store.Store
	dir           directory.Lookup
	msgr          Messenger
	log           *zap.SugaredLogger
	secrets       map[string]string
	loc           *time.Location
	skip          mealday.SkipDays
	alwaysCount   []string
	recipients    []string
	monitoChannel string
	devMode       bool
	now           func() time.Time
}

// New constructs a *Bot from cfg.
func New(cfg Config) *Bot {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bot{
		store:         cfg.Store,
		dir:           cfg.Directory,
		msgr:          cfg.Messenger,
		log:           log,
		secrets:       cfg.Secrets,
		loc:           loc,
		skip:          mealday.SkipDays(cfg.SkipDays),
		alwaysCount:   cfg.AlwaysCount,
		recipients:    cfg.Recipients,
		monitoChannel: cfg.MonitoChannel,
		devMode:       cfg.DevMode,
		now:           now,
	}
}

// Request is the structured form of one inbound slash command.
type Request struct {
	Command  string
	UserID   string
	Text     string
	Tokens   []string
	Events   intent.TagSet
	Mentions []string
}

// Handle authenticates and dispatches one slash command, returning the
// reply text for the visible response. ErrBadToken means nothing was
// mutated.
func (b *Bot) Handle(ctx context.Context, command, token, userID, text string) (string, error) {
	if err := b.auth(command, token); err != nil {
		return "", err
	}

	tokens := intent.Tokenize(text)
	req := Request{
		Command:  command,
		UserID:   userID,
		Text:     text,
		Tokens:   tokens,
		Events:   intent.Classify(tokens, commandTables[command]),
		Mentions: intent.Mentions(text),
	}

	switch command {
	case CommandMeals:
		return b.meals(ctx, req)
	case CommandUtang:
		return b.utang(ctx, req)
	case CommandMonito:
		return b.monito(ctx, req)
	}
	return "", fmt.Errorf("unknown command %q", command)
}

func (b *Bot) auth(command, token string) error {
	secret, ok := b.secrets[command]
	if !ok || token != secret {
		return ErrBadToken
	}
	return nil
}

// send delivers one SMS, or logs it instead in dev mode.
func (b *Bot) send(ctx context.Context, number, message string) error {
	if b.devMode {
		b.log.Infow("would send sms", "to", number, "message", message)
		return nil
	}
	err := b.msgr.Send(ctx, number, message)
	if err != nil {
		smsTotal.WithLabelValues("error").Inc()
		return err
	}
	smsTotal.WithLabelValues("ok").Inc()
	return nil
}

// names renders display names for ids, alphabetically. Unknown ids are
// skipped rather than failing the reply.
func (b *Bot) names(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		u, ok := b.dir.User(id)
		if !ok {
			continue
		}
		names = append(names, u.Name)
	}
	sort.Strings(names)
	return names
}

// displayName renders one id, falling back to the raw id.
func (b *Bot) displayName(id string) string {
	if u, ok := b.dir.User(id); ok {
		return u.Name
	}
	return id
}
