package metadata

import (
	"fmt"
	"time"
)

// Product time ranges come from many producers and none of them agree on a
// single format, so parsing tries each known layout in turn.

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime is a drop-in replacement for time.Parse, matching against every
// accepted product time layout
func ParseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if output, err := time.Parse(layout, value); err == nil {
			return output, nil
		}
	}
	return time.Time{}, fmt.Errorf("date could not be parsed by any expected time format: `%s`", value)
}
