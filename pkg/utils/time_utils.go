package utils

import (
	"strings"
	"time"
)

// ParseStateTransitionTime extracts a time from EC2 state transition reason
// Example format: "User initiated (2023-04-01 12:34:56 GMT)"
func ParseStateTransitionTime(reason string) *time.Time {
	start := strings.LastIndex(reason, "(")
	end := strings.LastIndex(reason, ")")
	if start < 0 || end <= start {
		return nil
	}

	dateStr := strings.TrimSpace(reason[start+1 : end])
	t, err := time.Parse("2006-01-02 15:04:05 MST", dateStr)
	if err != nil {
		return nil
	}

	return &t
}
