package briefing

import "time"

// Week describes one Monday-to-Sunday reporting period in UTC.
type Week struct {
	Start   time.Time
	End     time.Time
	ISOWeek int
}

// CurrentWeek returns the week containing now.
func CurrentWeek(now time.Time) Week {
	now = now.UTC()

	// time.Weekday counts Sunday as 0; shift so Monday opens the week.
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)

	_, isoWeek := now.ISOWeek()
	return Week{
		Start:   monday,
		End:     monday.AddDate(0, 0, 6),
		ISOWeek: isoWeek,
	}
}

// IsBriefingDue reports whether a weekly briefing is due: always when
// no briefing was ever generated, otherwise after seven days.
func IsBriefingDue(lastBriefing, now time.Time) bool {
	if lastBriefing.IsZero() {
		return true
	}
	return now.Sub(lastBriefing) >= 7*24*time.Hour
}
