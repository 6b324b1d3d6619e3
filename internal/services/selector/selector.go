// Package selector probes the upstream at shifted reference instants to find
// the run instance the caller most likely means.
package selector

import (
	"context"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
	"github.com/pkg/errors"
)

// Fetcher returns the snapshot of one run at one reference instant.
// (nil, nil) means the upstream has no data for that instant.
type Fetcher interface {
	GetSnapshot(ctx context.Context, originCode, trainNumber string, referenceMs int64) (models.Snapshot, error)
}

// Probe offsets in hours, in probe order.
var (
	HintOffsets = []int{0, -6, 6, -12, 12, -24, 24}
	NowOffsets  = []int{0, -6, -12, -18, -24}
)

type Selector struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Selector {
	return &Selector{fetcher: fetcher}
}

// Select returns the most plausible snapshot, or nil when every probe came
// back empty. Any upstream error aborts the probe loop.
func (s *Selector) Select(ctx context.Context, originCode, trainNumber string, hintMs *int64, nowMs int64) (*models.SnapshotDescriptor, error) {
	if hintMs != nil {
		return s.selectAround(ctx, originCode, trainNumber, *hintMs)
	}
	return s.selectNow(ctx, originCode, trainNumber, nowMs)
}

// The caller already picked a moment: the first non-empty probe wins.
func (s *Selector) selectAround(ctx context.Context, originCode, trainNumber string, baseMs int64) (*models.SnapshotDescriptor, error) {
	for _, off := range HintOffsets {
		d, err := s.probe(ctx, originCode, trainNumber, baseMs, off)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
	}
	return nil, nil
}

func (s *Selector) selectNow(ctx context.Context, originCode, trainNumber string, nowMs int64) (*models.SnapshotDescriptor, error) {
	var primary, backup *models.SnapshotDescriptor

	for _, off := range NowOffsets {
		d, err := s.probe(ctx, originCode, trainNumber, nowMs, off)
		if err != nil {
			return nil, err
		}
		if d == nil {
			continue
		}

		if off == 0 {
			primary = d
			if backup == nil {
				backup = d
			}
			if !LooksFuture(d.Payload, nowMs) {
				return d, nil
			}
			continue
		}

		if backup == nil {
			backup = d
		}
		if StillRunning(d.Payload, nowMs) {
			return d, nil
		}
	}

	if primary != nil {
		return primary, nil
	}
	return backup, nil
}

func (s *Selector) probe(ctx context.Context, originCode, trainNumber string, baseMs int64, offsetHours int) (*models.SnapshotDescriptor, error) {
	ref := baseMs + (time.Duration(offsetHours) * time.Hour).Milliseconds()
	snap, err := s.fetcher.GetSnapshot(ctx, originCode, trainNumber, ref)
	if err != nil {
		return nil, errors.Wrapf(err, "probe %+dh", offsetHours)
	}
	if snap == nil {
		return nil, nil
	}
	return &models.SnapshotDescriptor{
		Payload:             snap,
		ReferenceTimestamp:  ref,
		OffsetFromBaseHours: offsetHours,
	}, nil
}
