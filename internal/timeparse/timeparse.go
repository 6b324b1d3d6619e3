// Package timeparse normalizes the timestamp encodings found in upstream
// payloads into epoch milliseconds.
package timeparse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/araddon/dateparse"
)

// Plausible epoch-millisecond range, roughly 1973..2286.
const (
	minEpochMs = 1e11
	maxEpochMs = 1e13
)

// Parse returns the instant encoded by raw in epoch milliseconds.
// ok is false when raw is absent or not understood; Parse never panics.
func Parse(raw any) (ms int64, ok bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return parseInt(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parseFloat(f)
	case float64:
		return parseFloat(v)
	case float32:
		return parseFloat(float64(v))
	case int:
		return parseInt(int64(v))
	case int64:
		return parseInt(v)
	case int32:
		return parseInt(int64(v))
	case string:
		return ParseString(v)
	default:
		return 0, false
	}
}

func parseFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > minEpochMs && f < maxEpochMs {
		return int64(f), true
	}
	if f != math.Trunc(f) || f <= 0 || f > math.MaxInt64/2 {
		return 0, false
	}
	return parseInt(int64(f))
}

func parseInt(i int64) (int64, bool) {
	if i > minEpochMs && i < maxEpochMs {
		return i, true
	}
	if i <= 0 {
		return 0, false
	}
	// Compact wall-clock values sometimes arrive as JSON numbers.
	return ParseString(strconv.FormatInt(i, 10))
}

// ParseString applies the string rules of Parse.
func ParseString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if isDigits(s) {
		switch len(s) {
		case 13:
			if s[0] == '0' {
				return 0, false
			}
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return 0, false
			}
			return i, true
		case 12:
			return parseCompact(s, "200601021504")
		case 14:
			return parseCompact(s, "20060102150405")
		}
	}

	return parseGeneric(s)
}

func parseGeneric(s string) (ms int64, ok bool) {
	defer func() {
		if recover() != nil {
			ms, ok = 0, false
		}
	}()
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return 0, false
	}
	return positive(t.UnixMilli())
}

func parseCompact(s, layout string) (int64, bool) {
	t, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		return 0, false
	}
	return positive(t.UnixMilli())
}

func positive(ms int64) (int64, bool) {
	if ms <= 0 {
		return 0, false
	}
	return ms, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// PickFirstTimeMs returns the first field of fields, in order, whose value
// parses. The order is significant: callers list aliases from the most
// authoritative to the least.
func PickFirstTimeMs(rec models.Record, fields []string) (int64, bool) {
	for _, f := range fields {
		if ms, ok := Parse(rec[f]); ok {
			return ms, true
		}
	}
	return 0, false
}

// Ptr returns a pointer to ms when ok, nil otherwise.
func Ptr(ms int64, ok bool) *int64 {
	if !ok {
		return nil
	}
	return &ms
}
