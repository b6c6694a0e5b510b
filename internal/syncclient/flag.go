package syncclient

import (
	"context"
	"sync"

	"mealtrack/internal/meals"
)

// SendFunc delivers a flag value to the server.
type SendFunc func(ctx context.Context, value bool) error

// Flag tracks one meal toggle through the sync protocol. It is a two-state
// machine per flag: Synced(v) holds the last server-confirmed value,
// Pending(v') an optimistic one awaiting confirmation.
//
// Toggles are not deduplicated or debounced. A rapid double-toggle issues two
// independent requests; each carries a sequence number taken at issue time
// and only the newest issued request may settle the flag, so the last toggle
// wins regardless of response arrival order.
type Flag struct {
	send SendFunc

	mu        sync.Mutex
	confirmed bool   // last value the server acknowledged
	shown     bool   // what the UI displays right now
	seq       uint64 // newest issued request
	inflight  int
}

// NewFlag creates a flag whose confirmed value is initial.
func NewFlag(initial bool, send SendFunc) *Flag {
	return &Flag{send: send, confirmed: initial, shown: initial}
}

// Shown reports the value the UI should display: the optimistic value while
// a toggle is pending, the confirmed one otherwise.
func (f *Flag) Shown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shown
}

// Synced reports whether no toggle is awaiting confirmation.
func (f *Flag) Synced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight == 0
}

// Toggle flips the displayed value immediately and sends the mutation. The
// returned channel yields that request's outcome once; on failure the
// display has already been rolled back to the last confirmed value.
func (f *Flag) Toggle(ctx context.Context) <-chan error {
	f.mu.Lock()
	f.seq++
	n := f.seq
	target := !f.shown
	f.shown = target
	f.inflight++
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		err := f.send(ctx, target)
		f.settle(n, target, err)
		done <- err
	}()
	return done
}

func (f *Flag) settle(n uint64, target bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if n != f.seq {
		// A newer toggle superseded this request; its response decides.
		return
	}
	if err != nil {
		f.shown = f.confirmed
		return
	}
	f.confirmed = target
}

// DayFlags binds one displayed day's three flags to the API. Dropping the
// value (switching days, closing the user panel) abandons in-flight requests
// without canceling them, matching the protocol.
type DayFlags struct {
	Date  string
	flags map[meals.Type]*Flag
}

// NewDayFlags seeds the three flags from a fetched day.
func NewDayFlags(c *Client, userID string, day meals.Day) *DayFlags {
	mk := func(meal meals.Type, initial bool) *Flag {
		return NewFlag(initial, func(ctx context.Context, value bool) error {
			return c.SetFlag(ctx, userID, day.Date, meal, value)
		})
	}
	return &DayFlags{
		Date: day.Date,
		flags: map[meals.Type]*Flag{
			meals.Breakfast: mk(meals.Breakfast, day.Breakfast),
			meals.Lunch:     mk(meals.Lunch, day.Lunch),
			meals.Dinner:    mk(meals.Dinner, day.Dinner),
		},
	}
}

// Toggle flips one meal's flag.
func (d *DayFlags) Toggle(ctx context.Context, meal meals.Type) (<-chan error, error) {
	f, ok := d.flags[meal]
	if !ok {
		return nil, meals.ErrUnknownMeal
	}
	return f.Toggle(ctx), nil
}

// Shown returns the displayed value for one meal.
func (d *DayFlags) Shown(meal meals.Type) bool {
	f, ok := d.flags[meal]
	return ok && f.Shown()
}
