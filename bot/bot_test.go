package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tambayteam/tambay/directory"
	"github.com/tambayteam/tambay/mealday"
	"github.com/tambayteam/tambay/store"
)

func dayKey(t time.Time) string {
	return mealday.Key(t, manila)
}

var manila = mustLoadLocation("Asia/Manila")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type sentSMS struct {
	Number  string
	Message string
}

type fakeMessenger struct {
	mu   sync.Mutex
	err  error
	sent []sentSMS
}

func (f *fakeMessenger) Send(_ context.Context, number, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{Number: number, Message: message})
	return nil
}

func (f *fakeMessenger) all() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentSMS(nil), f.sent...)
}

// newTestBot wires a Bot against in-memory fakes. The returned clock
// starts on Wednesday 2024-03-06 13:00 Manila; tests move it to cross
// day boundaries.
func newTestBot(t *testing.T) (*Bot, *store.Memory, *fakeMessenger, *time.Time) {
	t.Helper()

	clock := time.Date(2024, time.March, 6, 13, 0, 0, 0, manila)
	mem := store.NewMemory()
	msgr := &fakeMessenger{}
	dir := &directory.Static{
		ByID: map[string]directory.User{
			"U1": {ID: "U1", Name: "Juan", Phone: "639170000001"},
			"U2": {ID: "U2", Name: "Maria", Phone: "639170000002"},
			"U3": {ID: "U3", Name: "Pedro", Phone: "639170000003"},
		},
		Channels: map[string][]string{
			"monito-monita": {"U1", "U2", "U3"},
		},
	}

	b := New(Config{
		Store:     mem,
		Directory: dir,
		Messenger: msgr,
		Secrets: map[string]string{
			CommandMeals:  "meals-secret",
			CommandUtang:  "utang-secret",
			CommandMonito: "monito-secret",
		},
		Location:      manila,
		SkipDays:      []time.Weekday{time.Saturday, time.Sunday},
		AlwaysCount:   []string{"U9"},
		Recipients:    []string{"639171110000"},
		MonitoChannel: "monito-monita",
		Now:           func() time.Time { return clock },
	})
	return b, mem, msgr, &clock
}

func TestHandleAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong secret is rejected without mutation", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "wrong", "U1", "lunch")
		require.ErrorIs(t, err, ErrBadToken)

		day := dayKey(*clock)
		n, err := mem.Cardinality(ctx, "lunch:"+day)
		require.NoError(t, err)
		require.EqualValues(t, 0, n)
	})

	t.Run("secrets are per command", func(t *testing.T) {
		b, _, _, _ := newTestBot(t)
		_, err := b.Handle(ctx, CommandUtang, "meals-secret", "U1", "utang me")
		require.ErrorIs(t, err, ErrBadToken)
	})

	t.Run("unknown command is rejected", func(t *testing.T) {
		b, _, _, _ := newTestBot(t)
		_, err := b.Handle(ctx, "bogus", "meals-secret", "U1", "lunch")
		require.ErrorIs(t, err, ErrBadToken)
	})
}
