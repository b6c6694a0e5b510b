package syncclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealtrack/internal/meals"
)

func TestToggleSuccess(t *testing.T) {
	var sent []bool
	f := NewFlag(false, func(ctx context.Context, value bool) error {
		sent = append(sent, value)
		return nil
	})

	done := f.Toggle(context.Background())
	if err := <-done; err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !f.Shown() {
		t.Fatal("shown = false after confirmed toggle")
	}
	if !f.Synced() {
		t.Fatal("flag still pending after response")
	}
	if len(sent) != 1 || !sent[0] {
		t.Fatalf("sent = %v, want [true]", sent)
	}
}

func TestToggleIsOptimistic(t *testing.T) {
	release := make(chan struct{})
	f := NewFlag(false, func(ctx context.Context, value bool) error {
		<-release
		return nil
	})

	done := f.Toggle(context.Background())
	// Before the server answers, the UI already shows the flipped value.
	if !f.Shown() {
		t.Fatal("optimistic value not shown while pending")
	}
	if f.Synced() {
		t.Fatal("flag reported synced while request in flight")
	}
	close(release)
	<-done
}

func TestToggleFailureRollsBack(t *testing.T) {
	f := NewFlag(true, func(ctx context.Context, value bool) error {
		return errors.New("network down")
	})

	done := f.Toggle(context.Background())
	if err := <-done; err == nil {
		t.Fatal("expected failure")
	}
	if !f.Shown() {
		t.Fatal("shown not rolled back to pre-toggle value")
	}
	if !f.Synced() {
		t.Fatal("flag stuck pending after failure")
	}
}

// TestDoubleToggleLastIssuedWins pins the race policy: with two requests in
// flight, the newest issued toggle decides the final value even when the
// older response arrives last.
func TestDoubleToggleLastIssuedWins(t *testing.T) {
	type call struct {
		value   bool
		release chan error
	}
	calls := make(chan call, 2)
	f := NewFlag(false, func(ctx context.Context, value bool) error {
		c := call{value: value, release: make(chan error)}
		calls <- c
		return <-c.release
	})

	ctx := context.Background()
	done1 := f.Toggle(ctx) // wants true
	first := <-calls
	done2 := f.Toggle(ctx) // wants false
	second := <-calls

	if !first.value || second.value {
		t.Fatalf("sent values = %v, %v; want true, false", first.value, second.value)
	}

	// Second (newest) request settles first, successfully.
	second.release <- nil
	if err := <-done2; err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if f.Shown() {
		t.Fatal("shown should be false after newest toggle confirmed")
	}

	// The stale response — even a failure — must not disturb the flag.
	first.release <- errors.New("too late")
	<-done1
	if f.Shown() {
		t.Fatal("stale response changed the displayed value")
	}
	if !f.Synced() {
		t.Fatal("flag stuck pending after both responses")
	}
}

func TestStaleSuccessIgnored(t *testing.T) {
	type call struct {
		value   bool
		release chan error
	}
	calls := make(chan call, 2)
	f := NewFlag(false, func(ctx context.Context, value bool) error {
		c := call{value: value, release: make(chan error)}
		calls <- c
		return <-c.release
	})

	ctx := context.Background()
	done1 := f.Toggle(ctx) // wants true
	first := <-calls
	done2 := f.Toggle(ctx) // wants false
	second := <-calls

	// Old request succeeds after being superseded, then the new one fails:
	// rollback must land on the last confirmed value, which the stale
	// success did not update.
	first.release <- nil
	<-done1
	second.release <- errors.New("write failed")
	<-done2

	if f.Shown() {
		t.Fatal("expected rollback to false, the pre-toggle confirmed value")
	}
}

func TestDayFlagsToggle(t *testing.T) {
	// DayFlags built from a fetched day seeds each flag's confirmed value.
	ok := func(ctx context.Context, v bool) error { return nil }
	d := &DayFlags{
		Date: "2025-09-01",
		flags: map[meals.Type]*Flag{
			meals.Breakfast: NewFlag(true, ok),
			meals.Lunch:     NewFlag(false, ok),
			meals.Dinner:    NewFlag(false, ok),
		},
	}

	if !d.Shown(meals.Breakfast) || d.Shown(meals.Lunch) {
		t.Fatal("seeded values wrong")
	}

	done, err := d.Toggle(context.Background(), meals.Lunch)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("toggle settled with: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("toggle did not settle")
	}
	if !d.Shown(meals.Lunch) {
		t.Fatal("lunch not shown after toggle")
	}

	if _, err := d.Toggle(context.Background(), meals.Type("brunch")); err == nil {
		t.Fatal("expected error for unknown meal")
	}
}
