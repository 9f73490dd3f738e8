package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/megasession/internal/apierr"
	"github.com/dmitrijs2005/megasession/internal/chain"
	"github.com/dmitrijs2005/megasession/internal/logging"
	"github.com/dmitrijs2005/megasession/internal/netx"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultHost       = "g.api.mega.co.nz"
	DefaultUserAgent  = "megasession/1.0"
	DefaultReferer    = "https://mega.nz/"
	DefaultRetryDelay = 10 * time.Second
	// DefaultRetryCap is the largest delay that will still be scheduled.
	DefaultRetryCap = 120000000 * time.Millisecond
)

// Options configures an HTTPClient. Zero values select the defaults above;
// HTTPClient defaults to a plain *http.Client.
type Options struct {
	Host      string
	Scheme    string
	UserAgent string
	Referer   string

	// RequestTimeout bounds a single attempt, not the whole call.
	RequestTimeout    time.Duration
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration

	HTTPClient *http.Client
	Observer   Observer
	Logger     logging.Logger
}

// HTTPClient is the Client that POSTs command batches to the /cs endpoint.
type HTTPClient struct {
	id        string
	host      string
	scheme    string
	userAgent string
	referer   string
	timeout   time.Duration
	initial   time.Duration
	maxDelay  time.Duration

	http     *http.Client
	observer Observer
	session  Session
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client from opts, filling unset fields with defaults.
func NewHTTPClient(opts Options) *HTTPClient {
	c := &HTTPClient{
		id:        uuid.NewString(),
		host:      opts.Host,
		scheme:    opts.Scheme,
		userAgent: opts.UserAgent,
		referer:   opts.Referer,
		timeout:   opts.RequestTimeout,
		initial:   opts.RetryInitialDelay,
		maxDelay:  opts.RetryMaxDelay,
		http:      opts.HTTPClient,
		observer:  opts.Observer,
	}
	if c.host == "" {
		c.host = DefaultHost
	}
	if c.scheme == "" {
		c.scheme = "https"
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.referer == "" {
		c.referer = DefaultReferer
	}
	if c.initial <= 0 {
		c.initial = DefaultRetryDelay
	}
	if c.maxDelay <= 0 {
		c.maxDelay = DefaultRetryCap
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.observer == nil {
		log := opts.Logger
		if log == nil {
			log = logging.Nop{}
		}
		c.observer = NewLogObserver(log.With("client", c.id))
	}
	return c
}

// ID identifies this client instance in logs.
func (c *HTTPClient) ID() string {
	return c.id
}

// SetSessionID installs the session id sent with every later call.
func (c *HTTPClient) SetSessionID(sid, param string) {
	c.session.Set(sid, param)
}

// SessionID returns the installed session id, or "" before login.
func (c *HTTPClient) SessionID() string {
	return c.session.SID()
}

// CallID returns the id of the most recent call.
func (c *HTTPClient) CallID() int64 {
	return c.session.CallID()
}

// NewBackoff returns the retry schedule: initial, then doubling after every
// retry, stopping once the next delay would exceed limit.
func NewBackoff(initial, limit time.Duration) retry.Backoff {
	next := initial
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if next > limit {
			return 0, true
		}
		d := next
		next *= 2
		return d, false
	})
}

// transientError marks an attempt that may be re-issued.
type transientError struct {
	cond netx.Condition
	err  error
}

func (e *transientError) Error() string { return fmt.Sprintf("%s: %v", e.cond, e.err) }
func (e *transientError) Unwrap() error { return e.err }

// Call sends reqs as one batch and returns one raw result per request.
func (c *HTTPClient) Call(ctx context.Context, reqs []Request) ([]json.RawMessage, error) {
	return c.CallAsync(ctx, reqs).Await(ctx)
}

// CallAsync reserves the call id immediately and performs the call in the
// background.
func (c *HTTPClient) CallAsync(ctx context.Context, reqs []Request) *chain.Future[[]json.RawMessage] {
	id, sid, param := c.session.next()
	return chain.Go(ctx, func(ctx context.Context) ([]json.RawMessage, error) {
		return c.do(ctx, id, c.buildURL(id, sid, param), reqs)
	})
}

// CallSingle sends one request and maps a numeric result to its apierr kind.
func (c *HTTPClient) CallSingle(ctx context.Context, req Request) (json.RawMessage, error) {
	results, err := c.Call(ctx, []Request{req})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, apierr.New(apierr.MalformedResponse, fmt.Sprintf("expected 1 result, got %d", len(results)))
	}
	if code, ok := ItemError(results[0]); ok {
		return nil, apierr.FromCode(code)
	}
	return results[0], nil
}

func (c *HTTPClient) buildURL(id int64, sid, param string) string {
	u := fmt.Sprintf("%s://%s/cs?id=%d", c.scheme, c.host, id)
	if sid != "" {
		u += "&" + url.QueryEscape(param) + "=" + url.QueryEscape(sid)
	}
	return u
}

func (c *HTTPClient) do(ctx context.Context, id int64, u string, reqs []Request) ([]json.RawMessage, error) {
	payload, err := json.Marshal(reqs)
	if err != nil {
		return nil, apierr.Wrap(apierr.Transport, "encode request", err)
	}
	c.observer.OnRequest(ctx, id, payload)

	var (
		body    []byte
		last    error
		retries int
	)
	schedule := NewBackoff(c.initial, c.maxDelay)
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := schedule.Next()
		if !stop {
			retries++
			c.observer.OnRetry(ctx, id, retries, d, last)
		}
		return d, stop
	})

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, cond, err := c.post(ctx, u, payload)
		switch {
		case cond == netx.OK:
			body = b
			return nil
		case cond.Transient():
			last = &transientError{cond: cond, err: err}
			return retry.RetryableError(last)
		default:
			return apierr.Wrap(apierr.Transport, "request failed", err)
		}
	})
	if err != nil {
		var te *transientError
		if errors.As(err, &te) {
			return nil, apierr.Wrap(apierr.RetryExhausted, fmt.Sprintf("gave up after %d retries", retries), te)
		}
		return nil, err
	}

	c.observer.OnResponse(ctx, id, body)

	out := decodeOutcome(body)
	switch out.Kind {
	case OutcomeError:
		return nil, apierr.FromCode(out.Code)
	case OutcomeBatch:
		return out.Results, nil
	default:
		return nil, apierr.New(apierr.MalformedResponse, "malformed response")
	}
}

// post performs one attempt and classifies its result.
func (c *HTTPClient) post(ctx context.Context, u string, payload []byte) ([]byte, netx.Condition, error) {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, netx.Fatal, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, netx.ClassifyError(ctx, err), err
	}
	defer resp.Body.Close()

	if cond := netx.ClassifyStatus(resp.StatusCode); cond != netx.OK {
		return nil, cond, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := netx.ReadResponse(resp.Body)
	if err != nil {
		return nil, netx.ClassifyError(ctx, err), err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, netx.NoResponse, errors.New("empty response body")
	}
	return body, netx.OK, nil
}
