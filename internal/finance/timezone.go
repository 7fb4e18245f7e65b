package finance

import "time"

// getEasternTime returns America/New_York location, falling back to fixed EST if tzdata is missing.
func getEasternTime() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// pointLabel formats a bar timestamp as the series ordering key.
func pointLabel(ts int64, interval string) string {
	t := time.Unix(ts, 0).UTC().In(getEasternTime())
	switch interval {
	case "1d":
		return t.Format("2006-01-02")
	case "1h":
		return t.Format("2006-01-02 15:00")
	default:
		return t.Format("2006-01-02 15:04")
	}
}
