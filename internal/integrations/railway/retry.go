package railway

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
)

type retrying struct {
	next     Client
	attempts int
	pause    time.Duration
}

// WithRetry re-issues a single failed call up to attempts times when the
// failure is transient. "No data" results are never retried.
func WithRetry(next Client, attempts int, pause time.Duration) Client {
	if attempts <= 0 {
		return next
	}
	return &retrying{next: next, attempts: attempts, pause: pause}
}

func (r *retrying) SearchTrainNumber(ctx context.Context, trainNumber string) ([]string, error) {
	var lines []string
	err := r.do(ctx, "search", func() error {
		var err error
		lines, err = r.next.SearchTrainNumber(ctx, trainNumber)
		return err
	})
	return lines, err
}

func (r *retrying) GetSnapshot(ctx context.Context, originCode, trainNumber string, referenceMs int64) (models.Snapshot, error) {
	var snap models.Snapshot
	err := r.do(ctx, "snapshot", func() error {
		var err error
		snap, err = r.next.GetSnapshot(ctx, originCode, trainNumber, referenceMs)
		return err
	})
	return snap, err
}

func (r *retrying) do(ctx context.Context, op string, call func() error) error {
	err := call()
	for i := 0; i < r.attempts && IsTransient(err) && ctx.Err() == nil; i++ {
		slog.Warn("upstream call failed, retrying", "op", op, "attempt", i+1, "error", err.Error())
		if r.pause > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(r.pause):
			}
		}
		err = call()
	}
	return err
}
