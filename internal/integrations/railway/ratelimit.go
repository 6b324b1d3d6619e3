package railway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type limited struct {
	next  Client
	rl    RateLimiter
	name  string
	limit int64
	pause time.Duration
	now   func() time.Time
}

// WithRateLimit counts every upstream call against a shared per-minute budget.
// Over budget the call is delayed briefly, not rejected.
func WithRateLimit(next Client, rl RateLimiter, name string, perMinute int64) Client {
	if rl == nil || perMinute <= 0 {
		return next
	}
	return &limited{
		next:  next,
		rl:    rl,
		name:  name,
		limit: perMinute,
		pause: 500 * time.Millisecond,
		now:   time.Now,
	}
}

func (l *limited) SearchTrainNumber(ctx context.Context, trainNumber string) ([]string, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.next.SearchTrainNumber(ctx, trainNumber)
}

func (l *limited) GetSnapshot(ctx context.Context, originCode, trainNumber string, referenceMs int64) (models.Snapshot, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.next.GetSnapshot(ctx, originCode, trainNumber, referenceMs)
}

func (l *limited) wait(ctx context.Context) error {
	minuteKey := fmt.Sprintf("rl:upstream:%s:%s", l.name, l.now().UTC().Format("200601021504"))
	allowed, n, err := l.rl.Allow(ctx, minuteKey, l.limit, 70*time.Second)
	if err != nil {
		// Лимитер недоступен: не блокируем запрос пользователя.
		slog.Warn("rate limiter unavailable", "upstream", l.name, "error", err.Error())
		return nil
	}
	if allowed {
		return nil
	}
	slog.Warn("rate limit exceeded", "upstream", l.name, "count", n)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.pause):
		return nil
	}
}
