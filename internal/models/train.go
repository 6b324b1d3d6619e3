package models

// Record is one loosely-typed JSON object as decoded from the upstream
// (numbers arrive as json.Number).
type Record map[string]any

// Snapshot is the live-status payload of one run at one reference instant.
type Snapshot Record

// Stop is one element of a run's stop sequence.
type Stop Record

// Stops returns the run's stop sequence, skipping entries that are not objects.
func (s Snapshot) Stops() []Stop {
	raw, ok := s[FieldStops].([]any)
	if !ok {
		return nil
	}
	out := make([]Stop, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, Stop(m))
		}
	}
	return out
}

func (s Stop) Name() string { return stringField(Record(s), FieldStopName) }
func (s Stop) Code() string { return stringField(Record(s), FieldStopCode) }

func stringField(r Record, key string) string {
	v, ok := r[key].(string)
	if !ok {
		return ""
	}
	return v
}

// CandidateRun is one run parsed from an autocomplete result line.
type CandidateRun struct {
	DisplayText      string `json:"display"`
	TechnicalID      string `json:"technicalId"`
	TrainNumber      string `json:"trainNumber"`
	OriginCode       string `json:"originCode"`
	ApproximateEpoch *int64 `json:"approximateEpoch"`
}

// SnapshotDescriptor is one non-absent snapshot plus the instant it was requested for.
type SnapshotDescriptor struct {
	Payload             Snapshot
	ReferenceTimestamp  int64
	OffsetFromBaseHours int
}

type TrainCategory string

const (
	CategoryHighSpeed TrainCategory = "high-speed"
	CategoryIntercity TrainCategory = "intercity"
	CategoryRegional  TrainCategory = "regional"
	CategoryBus       TrainCategory = "bus"
	CategoryUnknown   TrainCategory = "unknown"
)

type TrainKind struct {
	ShortCode string        `json:"shortCode"`
	LongLabel string        `json:"longLabel"`
	Category  TrainCategory `json:"category"`
}

// Нормализованные состояния рейса.
const (
	JourneyPlanned   = "PLANNED"
	JourneyRunning   = "RUNNING"
	JourneyCompleted = "COMPLETED"
	JourneyCancelled = "CANCELLED"
	JourneyPartial   = "PARTIAL"
)

type JourneyState struct {
	State string `json:"state"`
	Label string `json:"label"`
}

type CurrentStop struct {
	StationName string `json:"stationName"`
	StationCode string `json:"stationCode"`
	Index       int    `json:"index"`
	Timestamp   *int64 `json:"timestamp"`
}

type DerivedState struct {
	TrainKind          TrainKind    `json:"trainKind"`
	GlobalDelayMinutes *int         `json:"globalDelayMinutes"`
	JourneyState       JourneyState `json:"journeyState"`
	CurrentStop        *CurrentStop `json:"currentStop"`
}

// LookupHints narrow down which run the caller means.
type LookupHints struct {
	TechnicalID string
	OriginCode  string
	EpochMs     *int64
}
