package meals

import (
	"context"
	"errors"
	"time"

	"mealtrack/internal/dates"
)

// Service validates attendance operations and anchors them to the current
// date window.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a service backed by a repository. now is consulted on
// every window read so the window rolls over at midnight; nil means
// time.Now.
func NewService(repo *Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Window returns the user's attendance for the current 3-day window,
// vivifying any missing records with all flags false.
func (s *Service) Window(ctx context.Context, userID string) (Window, error) {
	if userID == "" {
		return Window{}, errors.New("user id required")
	}
	ds := dates.Window(s.now())
	var days [3]Day
	for i, date := range ds {
		day, err := s.repo.Day(ctx, userID, date)
		if err != nil {
			return Window{}, err
		}
		days[i] = day
	}
	return Window{Day1: days[0], Day2: days[1], Day3: days[2]}, nil
}

// SetFlag validates and applies a single flag write. The meal name is parsed
// against the closed enumeration before the store is touched.
func (s *Service) SetFlag(ctx context.Context, userID, date, mealType string, status bool) error {
	if userID == "" || date == "" {
		return errors.New("userId and date required")
	}
	meal, err := ParseType(mealType)
	if err != nil {
		return err
	}
	return s.repo.SetFlag(ctx, userID, date, meal, status)
}

// Dates exposes the current window, recomputed per call.
func (s *Service) Dates() []string {
	return dates.Window(s.now())
}

// Recount refreshes the materialized headcount for date.
func (s *Service) Recount(ctx context.Context, date string) error {
	if date == "" {
		return errors.New("date required")
	}
	return s.repo.Recount(ctx, date)
}

// Summary returns the materialized headcount for date.
func (s *Service) Summary(ctx context.Context, date string) (Counts, error) {
	if date == "" {
		return Counts{}, errors.New("date required")
	}
	return s.repo.CountsFor(ctx, date)
}
