package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/BearBump/TrainBox/internal/models"
)

// FakeClient is an offline upstream for demos and local runs.
// Every train number resolves to one run from a fixed origin; the run's
// progress is derived from the reference instant, so repeated lookups move
// the train along its stops. Part of the numbers run late.
type FakeClient struct {
	now func() time.Time
}

func New() *FakeClient { return &FakeClient{now: time.Now} }

const originCode = "S00000"

var stations = []struct{ name, code string }{
	{"ORIGINE DEMO", originCode},
	{"INTERMEDIA DEMO", "S00001"},
	{"CAPOLINEA DEMO", "S00002"},
}

func (f *FakeClient) SearchTrainNumber(ctx context.Context, trainNumber string) ([]string, error) {
	if trainNumber == "" {
		return nil, nil
	}
	dep := f.departure(trainNumber, f.now())
	return []string{
		fmt.Sprintf("%s - %s - %s|%s-%s", trainNumber, stations[0].name, dep.Format("02/01/06"), trainNumber, originCode),
	}, nil
}

func (f *FakeClient) GetSnapshot(ctx context.Context, origin, trainNumber string, referenceMs int64) (models.Snapshot, error) {
	if origin != originCode {
		return nil, nil
	}
	ref := time.UnixMilli(referenceMs)
	dep := f.departure(trainNumber, ref)
	now := f.now()

	// 20% поездов опаздывают на 5 минут
	delay := 0
	if hash(trainNumber)%5 == 0 {
		delay = 5
	}

	stops := make([]any, 0, len(stations))
	for i, st := range stations {
		sched := dep.Add(time.Duration(i) * 40 * time.Minute)
		actual := sched.Add(time.Duration(delay) * time.Minute)
		stop := map[string]any{
			"stazione":         st.name,
			"id":               st.code,
			"partenza_teorica": ms(sched),
			"arrivo_teorico":   ms(sched),
		}
		if !actual.After(now) {
			if i < len(stations)-1 {
				stop["partenzaReale"] = ms(actual)
			}
			if i > 0 {
				stop["arrivoReale"] = ms(actual)
			}
		}
		stops = append(stops, stop)
	}

	return models.Snapshot{
		"numeroTreno":      json.Number(trainNumber),
		"compNumeroTreno":  "REG " + trainNumber,
		"categoria":        "REG",
		"origine":          stations[0].name,
		"destinazione":     stations[len(stations)-1].name,
		"orarioPartenza":   ms(dep),
		"ritardo":          json.Number(strconv.Itoa(delay)),
		"compRitardo":      []any{fmt.Sprintf("ritardo %d min.", delay)},
		"trenoSoppresso":   false,
		"fermateSoppresse": []any{},
		"fermate":          stops,
	}, nil
}

// departure places the run on the reference day at an hour derived from the
// train number.
func (f *FakeClient) departure(trainNumber string, ref time.Time) time.Time {
	h := int(hash(trainNumber) % 18)
	y, m, d := ref.Date()
	return time.Date(y, m, d, 5+h, 0, 0, 0, time.Local)
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func ms(t time.Time) json.Number {
	return json.Number(strconv.FormatInt(t.UnixMilli(), 10))
}
