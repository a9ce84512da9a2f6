package logger

import (
	"strings"
	"time"
)

// Status is the value of the status field for an operation that returned err.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "fail"
}

// Took is the time elapsed since start at millisecond precision.
func Took(start time.Time) time.Duration {
	return roundMS(time.Since(start))
}

func roundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Preview joins at most limit values with ", " and reports how many were left out.
func Preview(values []string, limit int) (string, int) {
	limit = min(max(limit, 0), len(values))
	return strings.Join(values[:limit], ", "), len(values) - limit
}
