// Package derived computes the normalized state of a run from its raw snapshot.
package derived

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/BearBump/TrainBox/internal/timeparse"
	"github.com/BearBump/TrainBox/internal/trainkind"
)

var delayTextRe = regexp.MustCompile(`([+-]?\d+)\s*min`)

// Delays beyond this many minutes are treated as garbage.
const maxDelayMinutes = 1e6

var journeyLabels = map[string]string{
	models.JourneyPlanned:   "Programmato",
	models.JourneyRunning:   "In viaggio",
	models.JourneyCompleted: "Arrivato",
	models.JourneyCancelled: "Soppresso",
	models.JourneyPartial:   "Parzialmente soppresso",
}

// Compute derives every normalized attribute of snap.
func Compute(snap models.Snapshot) models.DerivedState {
	return models.DerivedState{
		TrainKind:          trainkind.Classify(categoryTexts(snap)...),
		GlobalDelayMinutes: GlobalDelayMinutes(snap),
		JourneyState:       JourneyStateOf(snap),
		CurrentStop:        CurrentStopOf(snap),
	}
}

func categoryTexts(snap models.Snapshot) []string {
	out := make([]string, 0, len(models.RunCategoryText))
	for _, f := range models.RunCategoryText {
		out = append(out, text(snap[f]))
	}
	return out
}

// GlobalDelayMinutes returns the signed delay of the run; negative is early.
func GlobalDelayMinutes(snap models.Snapshot) *int {
	if f, ok := number(snap[models.FieldDelay]); ok {
		if math.Abs(f) > maxDelayMinutes {
			return nil
		}
		d := int(math.Round(f))
		return &d
	}

	summary, ok := snap[models.FieldDelayText].([]any)
	if !ok || len(summary) == 0 {
		return nil
	}
	m := delayTextRe.FindStringSubmatch(text(summary[0]))
	if m == nil {
		return nil
	}
	d, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &d
}

func JourneyStateOf(snap models.Snapshot) models.JourneyState {
	state := journeyState(snap)
	return models.JourneyState{State: state, Label: journeyLabels[state]}
}

func journeyState(snap models.Snapshot) string {
	if anyTrue(models.Record(snap), models.RunCancelledFlags) {
		return models.JourneyCancelled
	}

	stops := snap.Stops()
	if hasSuppressedStops(snap, stops) {
		return models.JourneyPartial
	}

	anyActual := false
	for _, st := range stops {
		if hasActual(st) {
			anyActual = true
			break
		}
	}
	switch {
	case !anyActual:
		return models.JourneyPlanned
	case hasActual(stops[len(stops)-1]):
		return models.JourneyCompleted
	default:
		return models.JourneyRunning
	}
}

func hasSuppressedStops(snap models.Snapshot, stops []models.Stop) bool {
	if list, ok := snap[models.FieldSuppressedStops].([]any); ok && len(list) > 0 {
		return true
	}
	for _, st := range stops {
		if kind, ok := number(st[models.FieldStopKind]); ok && int(kind) == models.StopKindSuppressed {
			return true
		}
		if anyTrue(models.Record(st), models.StopSuppressedFlags) {
			return true
		}
	}
	return false
}

// CurrentStopOf locates the run: the last detected station when it is one of
// the stops, otherwise the latest stop with an actual time.
func CurrentStopOf(snap models.Snapshot) *models.CurrentStop {
	stops := snap.Stops()

	if place := strings.TrimSpace(text(snap[models.FieldLastDetectedPlace])); place != "" {
		for i, st := range stops {
			if strings.EqualFold(strings.TrimSpace(st.Name()), place) {
				return &models.CurrentStop{
					StationName: st.Name(),
					StationCode: st.Code(),
					Index:       i,
					Timestamp:   timeparse.Ptr(timeparse.Parse(snap[models.FieldLastDetectedTime])),
				}
			}
		}
	}

	for i := len(stops) - 1; i >= 0; i-- {
		ms, ok := actualTime(stops[i])
		if !ok {
			continue
		}
		return &models.CurrentStop{
			StationName: stops[i].Name(),
			StationCode: stops[i].Code(),
			Index:       i,
			Timestamp:   &ms,
		}
	}
	return nil
}

// actualTime prefers the actual departure over the actual arrival.
func actualTime(st models.Stop) (int64, bool) {
	if ms, ok := timeparse.PickFirstTimeMs(models.Record(st), models.StopActualDeparture); ok {
		return ms, true
	}
	return timeparse.PickFirstTimeMs(models.Record(st), models.StopActualArrival)
}

func hasActual(st models.Stop) bool {
	_, ok := actualTime(st)
	return ok
}

func anyTrue(r models.Record, fields []string) bool {
	for _, f := range fields {
		if truthy(r[f]) {
			return true
		}
	}
	return false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		var err error
		if f, err = t.Float64(); err != nil {
			return 0, false
		}
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
