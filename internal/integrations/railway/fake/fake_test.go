package fake

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeClient_SearchTrainNumber(t *testing.T) {
	c := New()
	lines, err := c.SearchTrainNumber(context.Background(), "555")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, strings.HasSuffix(lines[0], "|555-S00000"))

	lines, err = c.SearchTrainNumber(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestFakeClient_GetSnapshot(t *testing.T) {
	c := New()
	c.now = func() time.Time { return time.Date(2025, 3, 28, 23, 59, 0, 0, time.Local) }

	ref := time.Date(2025, 3, 28, 12, 0, 0, 0, time.Local).UnixMilli()
	snap, err := c.GetSnapshot(context.Background(), "S00000", "555", ref)
	require.NoError(t, err)
	require.NotNil(t, snap)
	stops := snap.Stops()
	require.Len(t, stops, 3)
	require.Equal(t, "CAPOLINEA DEMO", stops[2].Name())
	// к концу дня поезд уже прибыл
	require.NotNil(t, stops[2]["arrivoReale"])
}

func TestFakeClient_GetSnapshot_UnknownOrigin(t *testing.T) {
	snap, err := New().GetSnapshot(context.Background(), "S99999", "555", time.Now().UnixMilli())
	require.NoError(t, err)
	require.Nil(t, snap)
}
