package fbgraph

import (
	"fmt"
	"strconv"
	"time"
)

// Layouts of the dates found in Graph API responses, most common first.
var timeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006",
	"01/02",
}

// ParseTime parses a Graph API date. Besides the layouts the API uses in
// date_format agnostic responses, unix timestamps in seconds are accepted.
// It is typically called from a jsonmap.Completer to derive a time.Time from
// a string field.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fbgraph: unrecognized date %q", s)
}
