package messages

import "time"

// TrainResolved is published once per lookup that ended on a concrete run.
type TrainResolved struct {
	RequestID   string `json:"request_id"`
	TrainNumber string `json:"train_number"`
	OriginCode  string `json:"origin_code"`
	TechnicalID string `json:"technical_id"`

	ReferenceTimestamp int64 `json:"reference_timestamp"`
	OffsetHours        int   `json:"offset_hours"`

	TrainKind    string `json:"train_kind"`
	JourneyState string `json:"journey_state"`
	DelayMinutes *int   `json:"delay_minutes,omitempty"`

	ResolvedAt time.Time `json:"resolved_at"`
}
