package viaggiatreno

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/TrainBox/internal/integrations/railway"
	"github.com/BearBump/TrainBox/internal/models"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "http://www.viaggiatreno.it/infomobilita/resteasy/viaggiatreno"
	DefaultTimeout = 12 * time.Second

	maxBodyBytes = 4 << 20
)

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) SearchTrainNumber(ctx context.Context, trainNumber string) ([]string, error) {
	const op = "cercaNumeroTrenoTrenoAutocomplete"
	body, status, err := c.get(ctx, op, op, trainNumber)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(railway.ErrMalformedPayload, op+": "+err.Error())
	}
	return lines, nil
}

func (c *Client) GetSnapshot(ctx context.Context, originCode, trainNumber string, referenceMs int64) (models.Snapshot, error) {
	const op = "andamentoTreno"
	body, status, err := c.get(ctx, op, op, originCode, trainNumber, strconv.FormatInt(referenceMs, 10))
	if err != nil {
		return nil, err
	}
	// Upstream answers 204 (or an empty/null body) when it has nothing for
	// this run at this instant.
	trimmed := bytes.TrimSpace(body)
	if status == http.StatusNoContent || len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var snap models.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, errors.Wrap(railway.ErrMalformedPayload, op+": "+err.Error())
	}
	if snap == nil {
		return nil, nil
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, op string, segments ...string) ([]byte, int, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, 0, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, errors.Wrap(ctxErr, op)
		}
		if isTimeout(err) {
			return nil, 0, errors.Wrap(railway.ErrTimeout, op)
		}
		return nil, 0, errors.Wrap(railway.ErrNetwork, op+": "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, resp.StatusCode, &railway.HTTPError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, errors.Wrap(ctxErr, op)
		}
		if isTimeout(err) {
			return nil, 0, errors.Wrap(railway.ErrTimeout, op)
		}
		return nil, 0, errors.Wrap(railway.ErrNetwork, op+": read body: "+err.Error())
	}
	return body, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
