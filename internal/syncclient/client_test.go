package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mealtrack/internal/identity"
	"mealtrack/internal/meals"
)

func TestNormalizeManualCode(t *testing.T) {
	if got := NormalizeManualCode("  user001 "); got != "USER001" {
		t.Fatalf("got %q", got)
	}
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/USER001":
			json.NewEncoder(w).Encode(identity.User{ID: "USER001", Name: "Rahul Sharma"})
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"User not found"}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	u, err := c.Lookup(context.Background(), "USER001")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.Name != "Rahul Sharma" {
		t.Fatalf("user = %+v", u)
	}

	if _, err := c.Lookup(context.Background(), "GHOST"); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetFlagRetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.SetFlag(context.Background(), "USER001", "2025-09-01", meals.Lunch, true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestSetFlagGivesUpAfterOneRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.SetFlag(context.Background(), "USER001", "2025-09-01", meals.Lunch, true); err == nil {
		t.Fatal("expected failure after retry budget")
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestSetFlagDoesNotRetryValidationFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unknown meal type"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.SetFlag(context.Background(), "USER001", "2025-09-01", meals.Lunch, true)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (4xx is terminal)", calls.Load())
	}
}

func TestSetFlagSendsWireShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.SetFlag(context.Background(), "USER001", "2025-09-02", meals.Dinner, false); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got["userId"] != "USER001" || got["date"] != "2025-09-02" || got["mealType"] != "dinner" || got["status"] != false {
		t.Fatalf("body = %v", got)
	}
}

func TestWindowAndDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/meals/USER001":
			json.NewEncoder(w).Encode(meals.Window{
				Day1: meals.Day{Date: "2025-09-01", Lunch: true},
				Day2: meals.Day{Date: "2025-09-02"},
				Day3: meals.Day{Date: "2025-09-03"},
			})
		case "/api/dates":
			json.NewEncoder(w).Encode([]string{"2025-09-01", "2025-09-02", "2025-09-03"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	win, err := c.Window(context.Background(), "USER001")
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !win.Day1.Lunch || win.Day2.Date != "2025-09-02" {
		t.Fatalf("window = %+v", win)
	}

	ds, err := c.Dates(context.Background())
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	if len(ds) != 3 || ds[0] != "2025-09-01" {
		t.Fatalf("dates = %v", ds)
	}

	// DayFlags seeded from the fetched window show the server values.
	d := NewDayFlags(c, "USER001", win.Day1)
	if !d.Shown(meals.Lunch) || d.Shown(meals.Breakfast) {
		t.Fatal("day flags not seeded from window")
	}
}
