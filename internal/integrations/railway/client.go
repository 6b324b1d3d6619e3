package railway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/pkg/errors"
)

// Client is the upstream rail-operations source.
type Client interface {
	// SearchTrainNumber returns the raw autocomplete lines for a public
	// train number, each "<display>|<trainNumber>-<originCode>".
	SearchTrainNumber(ctx context.Context, trainNumber string) ([]string, error)
	// GetSnapshot makes exactly one upstream call. A nil snapshot with a nil
	// error means the upstream has no data for that run at that instant.
	GetSnapshot(ctx context.Context, originCode, trainNumber string, referenceMs int64) (models.Snapshot, error)
}

var (
	ErrTimeout          = errors.New("upstream timeout")
	ErrNetwork          = errors.New("upstream network failure")
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// HTTPError is a non-success upstream response other than "no data".
type HTTPError struct {
	Op         string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: upstream http %d", e.Op, e.StatusCode)
}

// IsTransient reports whether a single re-issue of the failed call may help.
// A caller that gave up is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode >= http.StatusInternalServerError || he.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsTimeout reports whether err is an upstream timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
