// Package candidates turns free-text search results into candidate runs and
// picks the one the caller means.
package candidates

import (
	"time"

	"github.com/BearBump/TrainBox/internal/models"
)

// Nearest-epoch hints further away than this do not select anything.
const MaxHintDistance = 36 * time.Hour

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSelected
	OutcomeNeedsSelection
)

type Resolution struct {
	Outcome  Outcome
	Selected *models.CandidateRun
	Choices  []models.CandidateRun
}

// Resolve disambiguates among parsed candidates. First match wins:
// technical id hint, origin code hint, nearest epoch within 36h, a single
// remaining candidate. Anything else is returned as a choice set.
func Resolve(cands []models.CandidateRun, hints models.LookupHints) Resolution {
	if len(cands) == 0 {
		return Resolution{Outcome: OutcomeNone}
	}

	if hints.TechnicalID != "" {
		for i := range cands {
			if cands[i].TechnicalID == hints.TechnicalID {
				return selected(cands[i])
			}
		}
	}

	if hints.OriginCode != "" {
		for i := range cands {
			if cands[i].OriginCode == hints.OriginCode {
				return selected(cands[i])
			}
		}
	}

	if hints.EpochMs != nil {
		if c, ok := nearest(cands, *hints.EpochMs); ok {
			return selected(c)
		}
	}

	if len(cands) == 1 {
		return selected(cands[0])
	}

	choices := make([]models.CandidateRun, len(cands))
	copy(choices, cands)
	return Resolution{Outcome: OutcomeNeedsSelection, Choices: choices}
}

func nearest(cands []models.CandidateRun, hintMs int64) (models.CandidateRun, bool) {
	best := -1
	var bestDiff int64
	for i, c := range cands {
		if c.ApproximateEpoch == nil {
			continue
		}
		diff := *c.ApproximateEpoch - hintMs
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 || bestDiff > MaxHintDistance.Milliseconds() {
		return models.CandidateRun{}, false
	}
	return cands[best], true
}

func selected(c models.CandidateRun) Resolution {
	return Resolution{Outcome: OutcomeSelected, Selected: &c}
}
