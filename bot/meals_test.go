package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMealsRSVP(t *testing.T) {
	ctx := context.Background()

	t.Run("rsvp lands in today's set and replies silently", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		reply, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch please")
		require.NoError(t, err)
		require.Empty(t, reply)

		n, err := mem.Cardinality(ctx, "lunch:"+dayKey(*clock))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("double submission is idempotent", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)
		_, err = b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)

		n, err := mem.Cardinality(ctx, "lunch:"+dayKey(*clock))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("same calendar day shares one aggregate", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "tanghalian")
		require.NoError(t, err)

		*clock = clock.Add(9 * time.Hour) // still Wednesday
		_, err = b.Handle(ctx, CommandMeals, "meals-secret", "U2", "l")
		require.NoError(t, err)

		n, err := mem.Cardinality(ctx, "lunch:"+dayKey(*clock))
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})

	t.Run("next calendar day starts a fresh aggregate", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)
		today := dayKey(*clock)

		*clock = clock.AddDate(0, 0, 1)
		_, err = b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)

		require.NotEqual(t, today, dayKey(*clock))
		n, err := mem.Cardinality(ctx, "lunch:"+today)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		n, err = mem.Cardinality(ctx, "lunch:"+dayKey(*clock))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("one message can target several meals", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch and hapunan")
		require.NoError(t, err)

		for _, meal := range []string{"lunch", "dinner"} {
			n, err := mem.Cardinality(ctx, meal+":"+dayKey(*clock))
			require.NoError(t, err)
			require.EqualValues(t, 1, n, meal)
		}
	})

	t.Run("cancel removes the rsvp", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "dinner")
		require.NoError(t, err)
		_, err = b.Handle(ctx, CommandMeals, "meals-secret", "U1", "cancel dinner")
		require.NoError(t, err)

		n, err := mem.Cardinality(ctx, "dinner:"+dayKey(*clock))
		require.NoError(t, err)
		require.EqualValues(t, 0, n)
	})

	t.Run("cancel of a non-member is a no-op", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "cancel merienda")
		require.NoError(t, err)

		n, err := mem.Cardinality(ctx, "merienda:"+dayKey(*clock))
		require.NoError(t, err)
		require.EqualValues(t, 0, n)
	})
}

func TestMealsCount(t *testing.T) {
	ctx := context.Background()

	t.Run("lists every meal with sorted names", func(t *testing.T) {
		b, _, _, _ := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U2", "lunch")
		require.NoError(t, err)
		_, err = b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)

		reply, err := b.Handle(ctx, CommandMeals, "meals-secret", "U3", "ilan")
		require.NoError(t, err)
		require.Equal(t, "Lunch: 2\nJuan, Maria\nMerienda: 0\nDinner: 0\n", reply)
	})

	t.Run("count short-circuits mutation even with meal tags", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)

		reply, err := b.Handle(ctx, CommandMeals, "meals-secret", "U2", "ilan lunch")
		require.NoError(t, err)
		require.Contains(t, reply, "Lunch: 1")

		members, err := mem.Members(ctx, "lunch:"+dayKey(*clock))
		require.NoError(t, err)
		require.Equal(t, []string{"U1"}, members)
	})

	t.Run("unknown members are counted but not named", func(t *testing.T) {
		b, mem, _, clock := newTestBot(t)

		require.NoError(t, mem.AddMember(ctx, "lunch:"+dayKey(*clock), "UGONE"))
		_, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "lunch")
		require.NoError(t, err)

		reply, err := b.Handle(ctx, CommandMeals, "meals-secret", "U1", "bilang")
		require.NoError(t, err)
		require.Contains(t, reply, "Lunch: 2\nJuan\n")
	})
}
