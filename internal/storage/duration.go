package storage

import (
	"math"
	"strconv"
	"strings"
)

// parseDurationSeconds converts a clock-style duration string, as the sync
// tool writes them ("8:15:30", "123:04:05", "1 days 02:03:04", fractional
// seconds allowed), into whole seconds. The bool reports whether the value
// was parsable; callers map unparsable values to null rather than failing.
func parseDurationSeconds(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var days int64
	clock := s
	if fields := strings.Fields(s); len(fields) == 3 {
		unit := strings.TrimSuffix(fields[1], ",")
		if unit != "day" && unit != "days" {
			return 0, false
		}
		d, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || d < 0 {
			return 0, false
		}
		days = d
		clock = fields[2]
	} else if len(fields) != 1 {
		return 0, false
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || hours < 0 {
		return 0, false
	}
	mins, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, false
	}

	return days*86400 + hours*3600 + mins*60 + int64(secs), true
}

// durationSeconds is the null-propagating form used on scanned columns.
func durationSeconds(raw *string) *int64 {
	if raw == nil {
		return nil
	}
	secs, ok := parseDurationSeconds(*raw)
	if !ok {
		return nil
	}
	return &secs
}

// hoursFromSeconds converts whole seconds into hours rounded to two
// decimals, propagating null.
func hoursFromSeconds(secs *int64) *float64 {
	if secs == nil {
		return nil
	}
	h := math.Round(float64(*secs)/3600*100) / 100
	return &h
}

// secondsOrZero treats a null duration as zero when summing stages.
func secondsOrZero(secs *int64) int64 {
	if secs == nil {
		return 0
	}
	return *secs
}
