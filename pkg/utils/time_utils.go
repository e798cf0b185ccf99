package utils

import "time"

// Store timestamps as unix seconds.
func NowUnixSeconds() int64 { return time.Now().Unix() }

var displayLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Almaty"); err == nil {
		return loc
	}
	return time.FixedZone("ALMT", 5*3600)
}()

// FromUnixSeconds returns zero time if t<=0 to let callers decide how to render.
func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(displayLoc)
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(displayLoc).Format(time.RFC3339)
}

// UnixPtrToRFC3339 renders an optional unix timestamp column.
func UnixPtrToRFC3339(t *int64) string {
	if t == nil {
		return ""
	}
	return FormatRFC3339(FromUnixSeconds(*t))
}
