package selector

import (
	"time"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/BearBump/TrainBox/internal/timeparse"
)

// A run scheduled further ahead than this is not "happening now".
const FutureThreshold = 12 * time.Hour

// ScheduledDepartureMs reads the scheduled departure from the first stop,
// falling back to the run-level departure fields.
func ScheduledDepartureMs(run models.Snapshot) (int64, bool) {
	if stops := run.Stops(); len(stops) > 0 {
		if ms, ok := timeparse.PickFirstTimeMs(models.Record(stops[0]), models.StopScheduledDeparture); ok {
			return ms, true
		}
	}
	return timeparse.PickFirstTimeMs(models.Record(run), models.RunScheduledDeparture)
}

// ActualArrivalMs reads the actual arrival at the last stop, falling back to
// that stop's actual departure.
func ActualArrivalMs(run models.Snapshot) (int64, bool) {
	stops := run.Stops()
	if len(stops) == 0 {
		return 0, false
	}
	last := models.Record(stops[len(stops)-1])
	if ms, ok := timeparse.PickFirstTimeMs(last, models.StopActualArrival); ok {
		return ms, true
	}
	return timeparse.PickFirstTimeMs(last, models.StopActualDeparture)
}

func LooksFuture(run models.Snapshot, nowMs int64) bool {
	dep, ok := ScheduledDepartureMs(run)
	if !ok {
		return false
	}
	return dep-nowMs > FutureThreshold.Milliseconds()
}

// StillRunning is true for a run that is not future-scheduled and has not
// arrived at its last stop by nowMs.
func StillRunning(run models.Snapshot, nowMs int64) bool {
	if LooksFuture(run, nowMs) {
		return false
	}
	arr, ok := ActualArrivalMs(run)
	return !ok || arr > nowMs
}
