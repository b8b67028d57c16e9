package types

import (
	"fmt"
	"time"
)

// WireDateLayout is the only date shape the remote service accepts.
const WireDateLayout = "2006/01/02"

// acceptedDateLayouts are the input shapes tolerated from travelers, in
// match order. Year-first layouts are tried before DD/MM/YYYY so a
// four-digit leading year is never misread as a day.
var acceptedDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// ParseDate parses a traveler-supplied date in any accepted layout.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q matches none of YYYY-MM-DD, YYYY/MM/DD, DD/MM/YYYY", s)
}

// NormalizeDate re-emits a traveler-supplied date in the wire layout.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(WireDateLayout), nil
}
