package httpx

import (
	"fmt"
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange parses the optional from/to query parameters. Both accept a
// calendar date or an RFC3339 timestamp; a date in "to" is inclusive.
func DateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := parseBound(q.Get("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from: %v", ErrValidation, err)
	}
	to, err := parseBound(q.Get("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to: %v", ErrValidation, err)
	}
	return from, to, nil
}

func parseBound(raw string, end bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
