package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/deckmeta/go-data/errs"
	"github.com/deckmeta/go-data/logger"
)

// response is the raw result of one GET, read fully into memory before any
// decoding happens.
type response struct {
	status      int
	contentType string
	body        []byte
}

// Transport issues single HTTP GETs. It never retries; retrying is the
// caller's concern, which keeps one invocation one unit of work.
type Transport struct {
	client  *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// NewTransport creates a Transport with the given per-request timeout.
func NewTransport(timeout time.Duration, log logger.Logger) *Transport {
	return &Transport{
		client:  http.DefaultClient,
		timeout: timeout,
		logger:  log,
	}
}

// get issues exactly one HTTP GET and classifies its failure modes. The
// request id ties the log lines of one attempt together.
func (t *Transport) get(ctx context.Context, url string) (*response, error) {
	reqID := uuid.NewString()
	log := t.logger.With(map[string]interface{}{"requestId": reqID})

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(err, errs.Validation, "error creating request", errs.Context{URL: url})
	}
	req.Header.Set("Accept", "application/json")

	log.Trace("sending request: GET %s", url)
	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errs.Wrap(err, errs.Timeout,
				fmt.Sprintf("request timed out after %s", t.timeout),
				errs.Context{URL: url, Timeout: t.timeout})
		}
		return nil, errs.Wrap(err, errs.Network, "error sending request", errs.Context{URL: url})
	}
	defer resp.Body.Close()
	log.Debug("response status: %s", resp.Status)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(err, errs.Network, "error reading response body", errs.Context{URL: url, Status: resp.StatusCode})
	}

	contentType := resp.Header.Get("content-type")
	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.New(errs.API, "resource not found",
			errs.Context{URL: url, Status: resp.StatusCode})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.New(errs.Network,
			fmt.Sprintf("request failed with status (%s)", resp.Status),
			errs.Context{URL: url, Status: resp.StatusCode, ContentType: contentType, Preview: errs.Preview(string(body))})
	}

	return &response{status: resp.StatusCode, contentType: contentType, body: body}, nil
}
