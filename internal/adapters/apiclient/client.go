// Package apiclient talks to the submissions API on behalf of one viewer.
//
// Client satisfies rsvptoggle.Requester, so a toggle controller can drive it directly.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/penguicon/contrax/internal/adapters/httpapi"
	"github.com/penguicon/contrax/internal/adapters/httpapi/wire"
	"github.com/penguicon/contrax/internal/app/submissions"
	"github.com/penguicon/contrax/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080".
	BaseURL string

	// ViewerID is sent as X-Viewer-Id. Zero sends nothing and acts as the anonymous viewer.
	ViewerID domain.UserID

	// HTTPClient defaults to a client with a cookie jar and Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration

	// RSVPRetries is how many times an RSVP request is resent after a transport error.
	// Retries reuse the request's Idempotency-Key, so the server applies the change once.
	RSVPRetries int

	Logger *slog.Logger
}

type Client struct {
	baseURL    *url.URL
	viewerID   domain.UserID
	httpClient *http.Client
	retries    int
	logger     *slog.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base url must be http or https (got %q)", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("apiclient: cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar, Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		viewerID:   cfg.ViewerID,
		httpClient: httpClient,
		retries:    max(cfg.RSVPRetries, 0),
		logger:     logger,
	}, nil
}

// StatusError is a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("apiclient: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("apiclient: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// VersionTag picks the cache-busting tag for a list query: the server's last
// submission_ver cookie, or a random number in [0, 100000) when there is none.
func VersionTag(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == wire.VersionCookie && c.Value != "" {
			return c.Value
		}
	}
	return strconv.Itoa(rand.IntN(100000))
}

func (c *Client) AddRSVP(ctx context.Context, id domain.SubmissionID) error {
	return c.rsvp(ctx, http.MethodPost, id)
}

func (c *Client) RemoveRSVP(ctx context.Context, id domain.SubmissionID) error {
	return c.rsvp(ctx, http.MethodDelete, id)
}

func (c *Client) rsvp(ctx context.Context, method string, id domain.SubmissionID) error {
	path := fmt.Sprintf("/api/submission/%d/rsvp", int(id))
	key := uuid.NewString()
	for attempt := 0; ; attempt++ {
		resp, err := c.do(ctx, method, path, nil, key)
		if err == nil {
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) || ctx.Err() != nil || attempt >= c.retries {
			return err
		}
		c.logger.Warn("retrying rsvp request", "method", method, "submission_id", int(id), "attempt", attempt+1, "error", err)
	}
}

// ListSubmissions fetches the submissions in any of states.
func (c *Client) ListSubmissions(ctx context.Context, states []domain.FollowUpState) ([]domain.SubmissionData, error) {
	codes := make([]string, 0, len(states))
	for _, st := range states {
		codes = append(codes, strconv.Itoa(int(st)))
	}
	q := url.Values{}
	q.Set("state", strings.Join(codes, ","))
	q.Set("ver", VersionTag(c.cookies()))

	resp, err := c.do(ctx, http.MethodGet, "/api/submissions", q, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body []wire.Submission
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("apiclient: decode submissions: %w", err)
	}
	out := make([]domain.SubmissionData, 0, len(body))
	for _, s := range body {
		out = append(out, s.ToDomain())
	}
	return out, nil
}

// Board is the page's two lists.
type Board struct {
	Active   []domain.SubmissionData
	Rejected []domain.SubmissionData
}

// FetchBoard loads the active and rejected lists concurrently.
func (c *Client) FetchBoard(ctx context.Context) (Board, error) {
	var b Board
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := c.ListSubmissions(gctx, domain.ActiveStates)
		b.Active = list
		return err
	})
	g.Go(func() error {
		list, err := c.ListSubmissions(gctx, domain.RejectedStates)
		b.Rejected = list
		return err
	})
	if err := g.Wait(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Viewer fetches the profile of the configured viewer.
func (c *Client) Viewer(ctx context.Context) (submissions.ViewerProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/viewer", nil, "")
	if err != nil {
		return submissions.ViewerProfile{}, err
	}
	defer resp.Body.Close()

	var v wire.Viewer
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return submissions.ViewerProfile{}, fmt.Errorf("apiclient: decode viewer: %w", err)
	}
	return submissions.ViewerProfile{
		Viewer: domain.Viewer{ID: domain.UserID(v.ID), Name: v.Name, Staff: v.Staff},
		Points: v.Points,
	}, nil
}

func (c *Client) cookies() []*http.Cookie {
	if c.httpClient.Jar == nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// do sends a request and returns the response on 2xx. Other statuses are
// returned as *StatusError with the body already consumed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, idemKey string) (*http.Response, error) {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.viewerID != domain.AnonymousUserID {
		req.Header.Set(httpapi.ViewerHeader, strconv.Itoa(int(c.viewerID)))
	}
	if idemKey != "" {
		req.Header.Set(httpapi.IdempotencyKeyHeader, idemKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	se := &StatusError{StatusCode: resp.StatusCode}
	var er wire.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&er); err == nil {
		se.Code = er.Error.Code
		se.Message = er.Error.Message
		if rid, err := er.Error.RequestID.Get(); err == nil {
			se.RequestID = rid
		}
	}
	return nil, se
}
