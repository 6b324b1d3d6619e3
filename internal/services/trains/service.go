// Package trains answers "where is train N" end to end: search, disambiguate,
// probe for the relevant snapshot, derive state.
package trains

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/TrainBox/internal/broker/messages"
	"github.com/BearBump/TrainBox/internal/integrations/railway"
	"github.com/BearBump/TrainBox/internal/models"
	"github.com/BearBump/TrainBox/internal/services/candidates"
	"github.com/BearBump/TrainBox/internal/services/derived"
	"github.com/BearBump/TrainBox/internal/services/selector"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrInvalidInput = errors.New("invalid input")

var trainNumberRe = regexp.MustCompile(`^\d{1,6}$`)

const publishTimeout = 5 * time.Second

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type ResultKind string

const (
	ResultResolved       ResultKind = "resolved"
	ResultNeedsSelection ResultKind = "needs_selection"
	ResultNotFound       ResultKind = "not_found"
)

type Result struct {
	Kind      ResultKind
	RequestID string

	// ResultResolved
	OriginCode         string
	TechnicalID        string
	ReferenceTimestamp int64
	OffsetHours        int
	Snapshot           models.Snapshot
	Computed           models.DerivedState

	// ResultNeedsSelection
	Choices []models.CandidateRun

	// ResultNotFound
	Message string
}

type Service struct {
	client    railway.Client
	selector  *selector.Selector
	publisher Publisher
	topic     string
	now       func() time.Time

	inflight sync.WaitGroup
}

func New(client railway.Client, publisher Publisher, topic string) *Service {
	return &Service{
		client:    client,
		selector:  selector.New(client),
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Lookup resolves trainNumber to one run and its current state. Nothing to
// show and ambiguous numbers are results, not errors; only upstream failures
// and invalid input are returned as errors.
func (s *Service) Lookup(ctx context.Context, trainNumber string, hints models.LookupHints) (*Result, error) {
	trainNumber = strings.TrimSpace(trainNumber)
	if !trainNumberRe.MatchString(trainNumber) {
		return nil, errors.Wrapf(ErrInvalidInput, "train number %q", trainNumber)
	}
	hints.TechnicalID = strings.TrimSpace(hints.TechnicalID)
	hints.OriginCode = strings.TrimSpace(hints.OriginCode)

	reqID := uuid.NewString()
	now := s.now()

	res, err := s.lookup(ctx, reqID, trainNumber, hints, now)
	if err != nil {
		slog.Warn("train lookup failed", "request_id", reqID, "train_number", trainNumber, "err", err)
		return nil, err
	}
	slog.Info("train lookup", "request_id", reqID, "train_number", trainNumber, "outcome", res.Kind)

	if res.Kind == ResultResolved && s.publisher != nil && s.topic != "" {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.publishResolved(context.WithoutCancel(ctx), trainNumber, res, now)
		}()
	}
	return res, nil
}

// Wait blocks until every train.resolved event started by Lookup is delivered
// or dropped.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) lookup(ctx context.Context, reqID, trainNumber string, hints models.LookupHints, now time.Time) (*Result, error) {
	lines, err := s.client.SearchTrainNumber(ctx, trainNumber)
	if err != nil {
		return nil, errors.Wrap(err, "search train number")
	}

	r := candidates.Resolve(candidates.ParseLines(lines, now), hints)
	switch r.Outcome {
	case candidates.OutcomeNone:
		return &Result{
			Kind:      ResultNotFound,
			RequestID: reqID,
			Message:   fmt.Sprintf("no run found for train %s", trainNumber),
		}, nil
	case candidates.OutcomeNeedsSelection:
		return &Result{Kind: ResultNeedsSelection, RequestID: reqID, Choices: r.Choices}, nil
	}

	run := r.Selected
	number := run.TrainNumber
	if number == "" {
		number = trainNumber
	}

	desc, err := s.selector.Select(ctx, run.OriginCode, number, hints.EpochMs, now.UnixMilli())
	if err != nil {
		return nil, errors.Wrap(err, "select snapshot")
	}
	if desc == nil {
		return &Result{
			Kind:      ResultNotFound,
			RequestID: reqID,
			Message:   fmt.Sprintf("no live data for train %s from %s around the requested time", trainNumber, run.OriginCode),
		}, nil
	}

	return &Result{
		Kind:               ResultResolved,
		RequestID:          reqID,
		OriginCode:         run.OriginCode,
		TechnicalID:        run.TechnicalID,
		ReferenceTimestamp: desc.ReferenceTimestamp,
		OffsetHours:        desc.OffsetFromBaseHours,
		Snapshot:           desc.Payload,
		Computed:           derived.Compute(desc.Payload),
	}, nil
}

func (s *Service) publishResolved(ctx context.Context, trainNumber string, res *Result, now time.Time) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	b, err := json.Marshal(messages.TrainResolved{
		RequestID:          res.RequestID,
		TrainNumber:        trainNumber,
		OriginCode:         res.OriginCode,
		TechnicalID:        res.TechnicalID,
		ReferenceTimestamp: res.ReferenceTimestamp,
		OffsetHours:        res.OffsetHours,
		TrainKind:          res.Computed.TrainKind.ShortCode,
		JourneyState:       res.Computed.JourneyState.State,
		DelayMinutes:       res.Computed.GlobalDelayMinutes,
		ResolvedAt:         now.UTC(),
	})
	if err != nil {
		slog.Warn("marshal train.resolved failed", "request_id", res.RequestID, "err", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, []byte(trainNumber), b); err != nil {
		slog.Warn("publish train.resolved failed", "request_id", res.RequestID, "topic", s.topic, "err", err)
	}
}
