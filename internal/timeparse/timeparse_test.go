package timeparse

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/stretchr/testify/require"
)

func TestParse_EpochMillisNumeric(t *testing.T) {
	ms, ok := Parse(float64(1743170400000))
	require.True(t, ok)
	require.Equal(t, int64(1743170400000), ms)

	ms, ok = Parse(json.Number("1743170400000"))
	require.True(t, ok)
	require.Equal(t, int64(1743170400000), ms)

	ms, ok = Parse(int64(1743170400000))
	require.True(t, ok)
	require.Equal(t, int64(1743170400000), ms)
}

func TestParse_Absent(t *testing.T) {
	for _, raw := range []any{nil, "", "   ", 0, -5, float64(-1743170400000), true, []any{}, "0000000000000"} {
		_, ok := Parse(raw)
		require.False(t, ok, "%#v", raw)
	}
}

func TestParse_ThirteenDigitString(t *testing.T) {
	ms, ok := Parse("1743170400000")
	require.True(t, ok)
	require.Equal(t, int64(1743170400000), ms)
}

func TestParse_ThirteenDigitRoundTrip(t *testing.T) {
	for _, s := range []string{"1743170400000", "1000000000000", "9999999999999", "1711620000123"} {
		first, ok := Parse(s)
		require.True(t, ok)
		second, ok2 := Parse(strconv.FormatInt(first, 10))
		require.Equal(t, ok, ok2)
		require.Equal(t, first, second)
	}
}

func TestParse_CompactLocal(t *testing.T) {
	want := time.Date(2025, 3, 28, 14, 30, 0, 0, time.Local).UnixMilli()

	ms, ok := Parse("20250328143000")
	require.True(t, ok)
	require.Equal(t, want, ms)

	ms, ok = Parse("202503281430")
	require.True(t, ok)
	require.Equal(t, want, ms)

	ms, ok = Parse("20250328143017")
	require.True(t, ok)
	require.Equal(t, want+17_000, ms)
}

func TestParse_CompactAsNumber(t *testing.T) {
	want := time.Date(2025, 3, 28, 14, 30, 0, 0, time.Local).UnixMilli()

	ms, ok := Parse(json.Number("20250328143000"))
	require.True(t, ok)
	require.Equal(t, want, ms)
}

func TestParse_CompactInvalid(t *testing.T) {
	_, ok := Parse("202513281430")
	require.False(t, ok)
}

func TestParse_GenericFallback(t *testing.T) {
	ms, ok := Parse("2025-03-28T14:30:00Z")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 3, 28, 14, 30, 0, 0, time.UTC).UnixMilli(), ms)

	_, ok = Parse("not a date at all")
	require.False(t, ok)
}

func TestPickFirstTimeMs_Order(t *testing.T) {
	rec := models.Record{
		"b": "1743170400000",
		"c": float64(1743174000000),
	}

	ms, ok := PickFirstTimeMs(rec, []string{"a", "b", "c"})
	require.True(t, ok)
	require.Equal(t, int64(1743170400000), ms)

	ms, ok = PickFirstTimeMs(rec, []string{"c", "b"})
	require.True(t, ok)
	require.Equal(t, int64(1743174000000), ms)

	rec["b"] = "garbage value"
	ms, ok = PickFirstTimeMs(rec, []string{"a", "b", "c"})
	require.True(t, ok)
	require.Equal(t, int64(1743174000000), ms)

	_, ok = PickFirstTimeMs(rec, []string{"x", "y"})
	require.False(t, ok)
}

func TestPtr(t *testing.T) {
	require.Nil(t, Ptr(5, false))
	require.Equal(t, int64(5), *Ptr(5, true))
}
