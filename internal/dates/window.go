// Package dates computes the rolling attendance window.
package dates

import "time"

// Days is the length of the attendance window.
const Days = 3

// ISO is the wire format for calendar dates.
const ISO = "2006-01-02"

// Window returns the attendance window anchored at t: Days consecutive
// calendar dates starting with t's own date, formatted in t's location.
// Callers pass time.Now() so the window is recomputed on every request;
// caching the result across midnight would serve yesterday's window.
func Window(t time.Time) []string {
	out := make([]string, 0, Days)
	for i := 0; i < Days; i++ {
		out = append(out, t.AddDate(0, 0, i).Format(ISO))
	}
	return out
}
