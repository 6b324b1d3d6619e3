package trains_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BearBump/TrainBox/internal/integrations/railway"
	"github.com/BearBump/TrainBox/internal/models"
	"github.com/BearBump/TrainBox/internal/services/trains"
	"github.com/BearBump/TrainBox/internal/timeparse"
	"github.com/BearBump/TrainBox/internal/trainkind"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type Looker interface {
	Lookup(ctx context.Context, trainNumber string, hints models.LookupHints) (*trains.Result, error)
}

type TrainsAPI struct {
	svc Looker
}

func New(svc Looker) *TrainsAPI {
	return &TrainsAPI{svc: svc}
}

// Routes registers the public endpoints on r.
func (a *TrainsAPI) Routes(r chi.Router) {
	r.Get("/api/trains/{number}", a.GetTrain)
	r.Get("/api/train-kinds", a.ClassifyKind)
}

type resolvedResponse struct {
	OK                 bool                `json:"ok"`
	RequestID          string              `json:"requestId"`
	OriginCode         string              `json:"originCode"`
	TechnicalID        string              `json:"technicalId"`
	ReferenceTimestamp int64               `json:"referenceTimestamp"`
	Snapshot           models.Snapshot     `json:"snapshot"`
	Computed           models.DerivedState `json:"computed"`
}

type choice struct {
	Display          string `json:"display"`
	TechnicalID      string `json:"technicalId"`
	OriginCode       string `json:"originCode"`
	ApproximateEpoch *int64 `json:"approximateEpoch"`
}

type selectionResponse struct {
	OK             bool     `json:"ok"`
	RequestID      string   `json:"requestId"`
	NeedsSelection bool     `json:"needsSelection"`
	Choices        []choice `json:"choices"`
}

type notFoundResponse struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"requestId"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// GetTrain handles GET /api/trains/{number}?origin=&technicalId=&at=
func (a *TrainsAPI) GetTrain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hints := models.LookupHints{
		TechnicalID: q.Get("technicalId"),
		OriginCode:  q.Get("origin"),
	}
	if at := strings.TrimSpace(q.Get("at")); at != "" {
		ms, ok := timeparse.ParseString(at)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at: unrecognized timestamp"})
			return
		}
		hints.EpochMs = &ms
	}

	res, err := a.svc.Lookup(r.Context(), chi.URLParam(r, "number"), hints)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Render(res))
}

// Render maps a lookup result to its response body.
func Render(res *trains.Result) any {
	switch res.Kind {
	case trains.ResultResolved:
		return resolvedResponse{
			OK:                 true,
			RequestID:          res.RequestID,
			OriginCode:         res.OriginCode,
			TechnicalID:        res.TechnicalID,
			ReferenceTimestamp: res.ReferenceTimestamp,
			Snapshot:           res.Snapshot,
			Computed:           res.Computed,
		}
	case trains.ResultNeedsSelection:
		out := make([]choice, 0, len(res.Choices))
		for _, c := range res.Choices {
			out = append(out, choice{
				Display:          c.DisplayText,
				TechnicalID:      c.TechnicalID,
				OriginCode:       c.OriginCode,
				ApproximateEpoch: c.ApproximateEpoch,
			})
		}
		return selectionResponse{OK: true, RequestID: res.RequestID, NeedsSelection: true, Choices: out}
	default:
		return notFoundResponse{OK: true, RequestID: res.RequestID, Message: res.Message}
	}
}

// ClassifyKind handles GET /api/train-kinds?text=FR+9544&text=...
func (a *TrainsAPI) ClassifyKind(w http.ResponseWriter, r *http.Request) {
	texts := r.URL.Query()["text"]
	if len(texts) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK        bool             `json:"ok"`
		TrainKind models.TrainKind `json:"trainKind"`
	}{OK: true, TrainKind: trainkind.Classify(texts...)})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, trains.ErrInvalidInput):
		status = http.StatusBadRequest
	case railway.IsTimeout(err):
		status = http.StatusGatewayTimeout
	}
	if status != http.StatusBadRequest {
		slog.Error("train lookup upstream failure", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
