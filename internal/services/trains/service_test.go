package trains

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BearBump/TrainBox/internal/broker/messages"
	"github.com/BearBump/TrainBox/internal/integrations/railway"
	"github.com/BearBump/TrainBox/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var now = time.Date(2025, 3, 29, 15, 0, 0, 0, time.Local)

type fakeClient struct {
	lines     []string
	searchErr error

	snaps   map[int64]models.Snapshot
	snapErr error
	refs    []int64
	origins []string
}

func (c *fakeClient) SearchTrainNumber(ctx context.Context, trainNumber string) ([]string, error) {
	return c.lines, c.searchErr
}

func (c *fakeClient) GetSnapshot(ctx context.Context, originCode, trainNumber string, referenceMs int64) (models.Snapshot, error) {
	c.refs = append(c.refs, referenceMs)
	c.origins = append(c.origins, originCode)
	if c.snapErr != nil {
		return nil, c.snapErr
	}
	return c.snaps[referenceMs], nil
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func runningSnapshot() models.Snapshot {
	dep := now.Add(-time.Hour).UnixMilli()
	return models.Snapshot{
		"categoria": "REG",
		"ritardo":   json.Number("4"),
		"fermate": []any{
			map[string]any{"stazione": "MILANO CENTRALE", "id": "S01700", "partenza_teorica": dep, "partenzaReale": dep},
			map[string]any{"stazione": "BERGAMO", "id": "S01529"},
		},
	}
}

type ServiceSuite struct {
	suite.Suite

	client *fakeClient
	pub    *publisherMock
	svc    *Service
}

func (s *ServiceSuite) SetupTest() {
	s.client = &fakeClient{}
	s.pub = &publisherMock{}
	s.svc = New(s.client, s.pub, "train.resolved").WithClock(func() time.Time { return now })
}

func (s *ServiceSuite) TestLookup_InvalidNumber() {
	for _, n := range []string{"", "  ", "FR9544", "12345678", "55 5"} {
		_, err := s.svc.Lookup(context.Background(), n, models.LookupHints{})
		s.Require().ErrorIs(err, ErrInvalidInput, n)
	}
	s.pub.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestLookup_SingleCandidateResolved() {
	s.client.lines = []string{"2611 - MILANO CENTRALE|2611-S01700"}
	s.client.snaps = map[int64]models.Snapshot{now.UnixMilli(): runningSnapshot()}

	var published messages.TrainResolved
	s.pub.On("Publish", mock.Anything, "train.resolved", []byte("2611"), mock.Anything).
		Run(func(args mock.Arguments) {
			s.Require().NoError(json.Unmarshal(args.Get(3).([]byte), &published))
		}).
		Return(nil).
		Once()

	res, err := s.svc.Lookup(context.Background(), " 2611 ", models.LookupHints{})
	s.Require().NoError(err)
	s.svc.Wait()
	s.Require().Equal(ResultResolved, res.Kind)
	s.Equal("S01700", res.OriginCode)
	s.Equal("2611-S01700", res.TechnicalID)
	s.Equal(now.UnixMilli(), res.ReferenceTimestamp)
	s.Contains([]string{
		models.JourneyPlanned, models.JourneyRunning, models.JourneyCompleted,
		models.JourneyCancelled, models.JourneyPartial,
	}, res.Computed.JourneyState.State)
	s.Equal(models.JourneyRunning, res.Computed.JourneyState.State)
	s.Equal("REG", res.Computed.TrainKind.ShortCode)
	s.Equal(4, *res.Computed.GlobalDelayMinutes)
	s.NotEmpty(res.RequestID)
	s.Equal([]int64{now.UnixMilli()}, s.client.refs)

	s.pub.AssertExpectations(s.T())
	s.Equal(res.RequestID, published.RequestID)
	s.Equal("2611", published.TrainNumber)
	s.Equal(models.JourneyRunning, published.JourneyState)
	s.Equal(now.UTC(), published.ResolvedAt)
}

func (s *ServiceSuite) TestLookup_NeedsSelection() {
	s.client.lines = []string{
		"555 - MILANO CENTRALE - 28/03 08:15|555-S01700",
		"555 - TORINO PORTA NUOVA - 29/03 06:00|555-S00219",
	}

	res, err := s.svc.Lookup(context.Background(), "555", models.LookupHints{})
	s.Require().NoError(err)
	s.Equal(ResultNeedsSelection, res.Kind)
	s.Len(res.Choices, 2)
	s.Empty(s.client.refs)
	s.pub.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestLookup_OriginHintAndEpochHintUseModeA() {
	s.client.lines = []string{
		"555 - MILANO CENTRALE - 28/03 08:15|555-S01700",
		"555 - TORINO PORTA NUOVA - 29/03 06:00|555-S00219",
	}
	hint := time.Date(2025, 3, 28, 8, 0, 0, 0, time.Local).UnixMilli()
	s.client.snaps = map[int64]models.Snapshot{hint - 6*3_600_000: runningSnapshot()}
	s.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	res, err := s.svc.Lookup(context.Background(), "555", models.LookupHints{OriginCode: "S00219", EpochMs: &hint})
	s.Require().NoError(err)
	s.svc.Wait()
	s.Require().Equal(ResultResolved, res.Kind)
	s.Equal("S00219", res.OriginCode)
	s.Equal(-6, res.OffsetHours)
	s.Equal([]string{"S00219", "S00219"}, s.client.origins)
}

func (s *ServiceSuite) TestLookup_NoCandidates() {
	s.client.lines = []string{"garbage without separator"}

	res, err := s.svc.Lookup(context.Background(), "999", models.LookupHints{})
	s.Require().NoError(err)
	s.Equal(ResultNotFound, res.Kind)
	s.Contains(res.Message, "999")
}

func (s *ServiceSuite) TestLookup_NoSnapshot() {
	s.client.lines = []string{"2611 - MILANO CENTRALE|2611-S01700"}

	res, err := s.svc.Lookup(context.Background(), "2611", models.LookupHints{})
	s.Require().NoError(err)
	s.Equal(ResultNotFound, res.Kind)
	s.Contains(res.Message, "S01700")
	s.Len(s.client.refs, 5)
	s.pub.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestLookup_UpstreamErrorsPropagate() {
	s.client.searchErr = railway.ErrTimeout
	_, err := s.svc.Lookup(context.Background(), "2611", models.LookupHints{})
	s.Require().True(railway.IsTimeout(err))

	s.client.searchErr = nil
	s.client.lines = []string{"2611 - MILANO CENTRALE|2611-S01700"}
	s.client.snapErr = &railway.HTTPError{Op: "andamentoTreno", StatusCode: 500}
	_, err = s.svc.Lookup(context.Background(), "2611", models.LookupHints{})
	var he *railway.HTTPError
	s.Require().ErrorAs(err, &he)
	s.Equal(500, he.StatusCode)
	s.Len(s.client.refs, 1)
}

func (s *ServiceSuite) TestLookup_PublishFailureDoesNotFailLookup() {
	s.client.lines = []string{"2611 - MILANO CENTRALE|2611-S01700"}
	s.client.snaps = map[int64]models.Snapshot{now.UnixMilli(): runningSnapshot()}
	s.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down")).
		Once()

	res, err := s.svc.Lookup(context.Background(), "2611", models.LookupHints{})
	s.Require().NoError(err)
	s.Equal(ResultResolved, res.Kind)
	s.svc.Wait()
	s.pub.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestLookup_SlowPublisherDoesNotDelayResult() {
	s.client.lines = []string{"2611 - MILANO CENTRALE|2611-S01700"}
	s.client.snaps = map[int64]models.Snapshot{now.UnixMilli(): runningSnapshot()}

	release := make(chan struct{})
	var (
		ctxErr      error
		hasDeadline bool
	)
	s.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
			pctx := args.Get(0).(context.Context)
			ctxErr = pctx.Err()
			_, hasDeadline = pctx.Deadline()
		}).
		Return(nil).
		Once()

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	res, err := s.svc.Lookup(ctx, "2611", models.LookupHints{})
	elapsed := time.Since(start)
	cancel()

	s.Require().NoError(err)
	s.Equal(ResultResolved, res.Kind)
	s.Less(elapsed, 500*time.Millisecond)

	close(release)
	s.svc.Wait()
	s.pub.AssertExpectations(s.T())
	s.NoError(ctxErr)
	s.True(hasDeadline)
}

func (s *ServiceSuite) TestLookup_NoPublisher() {
	svc := New(s.client, nil, "").WithClock(func() time.Time { return now })
	s.client.lines = []string{"2611 - MILANO CENTRALE|2611-S01700"}
	s.client.snaps = map[int64]models.Snapshot{now.UnixMilli(): runningSnapshot()}

	res, err := svc.Lookup(context.Background(), "2611", models.LookupHints{})
	s.Require().NoError(err)
	s.Equal(ResultResolved, res.Kind)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
