package candidates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/BearBump/TrainBox/internal/timeparse"
)

var (
	dateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	timeRe = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// ParseLines turns autocomplete lines "<display>|<trainNumber>-<originCode>"
// into candidate runs. Lines without an origin code are dropped.
func ParseLines(lines []string, now time.Time) []models.CandidateRun {
	out := make([]models.CandidateRun, 0, len(lines))
	for _, line := range lines {
		c, ok := ParseLine(line, now)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func ParseLine(line string, now time.Time) (models.CandidateRun, bool) {
	display, techID, found := strings.Cut(strings.TrimSpace(line), "|")
	if !found {
		return models.CandidateRun{}, false
	}
	display = strings.TrimSpace(display)
	techID = strings.TrimSpace(techID)

	// "<number>-<origin>" or the newer "<number>-<origin>-<departureEpochMs>".
	parts := strings.Split(techID, "-")
	if len(parts) < 2 {
		return models.CandidateRun{}, false
	}
	number := strings.TrimSpace(parts[0])
	origin := strings.TrimSpace(parts[1])
	if origin == "" {
		return models.CandidateRun{}, false
	}

	c := models.CandidateRun{
		DisplayText: display,
		TechnicalID: techID,
		TrainNumber: number,
		OriginCode:  origin,
	}
	if ms, ok := ApproximateEpoch(display, now); ok {
		c.ApproximateEpoch = &ms
	} else if len(parts) > 2 {
		c.ApproximateEpoch = timeparse.Ptr(timeparse.ParseString(parts[2]))
	}
	return c, true
}

// ApproximateEpoch reads "dd/mm[/yyyy]" and an optional "HH:mm" from display
// text. The year defaults to now's year and the time of day to 12:00.
func ApproximateEpoch(display string, now time.Time) (int64, bool) {
	dm := dateRe.FindStringSubmatch(display)
	if dm == nil {
		return 0, false
	}
	day, _ := strconv.Atoi(dm[1])
	month, _ := strconv.Atoi(dm[2])
	year := now.Year()
	if dm[3] != "" {
		year, _ = strconv.Atoi(dm[3])
		if len(dm[3]) == 2 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return 0, false
	}

	hour, minute := 12, 0
	if tm := timeRe.FindStringSubmatch(display); tm != nil {
		hour, _ = strconv.Atoi(tm[1])
		minute, _ = strconv.Atoi(tm[2])
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local).UnixMilli(), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
