package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"viralvideos/internal/infra"
)

const (
	apiVersion             = "preview"
	defaultRequestTimeout  = 30 * time.Second
	defaultDownloadTimeout = 10 * time.Minute
	maxErrorBodyBytes      = 4 << 10
)

// ClientOptions configures the low level Sora REST client.
type ClientOptions struct {
	Settings   Settings
	HTTPClient *http.Client
	// RequestTimeout bounds the create and status calls.
	RequestTimeout time.Duration
	// DownloadTimeout bounds the whole content stream.
	DownloadTimeout time.Duration
	Logger          *infra.Logger
}

// Client speaks the Sora video generation jobs API.
type Client struct {
	endpoint        string
	apiKey          string
	httpClient      *http.Client
	requestTimeout  time.Duration
	downloadTimeout time.Duration
	logger          *infra.Logger
}

type createJobRequest struct {
	Prompt   string `json:"prompt"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	NSeconds int    `json:"n_seconds"`
	Model    string `json:"model"`
}

type jobPayload struct {
	ID            string              `json:"id"`
	Status        string              `json:"status"`
	CreatedAt     int64               `json:"created_at"`
	FailureReason string              `json:"failure_reason"`
	Generations   []generationPayload `json:"generations"`
}

type generationPayload struct {
	ID string `json:"id"`
}

// NewClient validates settings and returns a ready client. Incomplete
// settings yield a KindNotConfigured error.
func NewClient(opts ClientOptions) (*Client, error) {
	if !opts.Settings.IsConfigured() {
		return nil, newError(KindNotConfigured, "new client", nil)
	}
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Settings.Endpoint), "/")
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, newError(KindNotConfigured, "new client", fmt.Errorf("invalid endpoint %q: %w", endpoint, err))
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Deadlines come from per-call contexts so a long download is not cut
		// short by a client-wide timeout.
		httpClient = &http.Client{}
	}
	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	downloadTimeout := opts.DownloadTimeout
	if downloadTimeout <= 0 {
		downloadTimeout = defaultDownloadTimeout
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &Client{
		endpoint:        endpoint,
		apiKey:          strings.TrimSpace(opts.Settings.APIKey),
		httpClient:      httpClient,
		requestTimeout:  requestTimeout,
		downloadTimeout: downloadTimeout,
		logger:          logger,
	}, nil
}

// CreateJob submits req and returns the queued job.
func (c *Client) CreateJob(ctx context.Context, req GenerationRequest) (*Job, error) {
	const op = "create job"
	body := createJobRequest{
		Prompt:   req.Prompt,
		Width:    req.Width,
		Height:   req.Height,
		NSeconds: req.Seconds,
		Model:    req.Model,
	}
	var out jobPayload
	if err := c.doJSON(ctx, op, http.MethodPost, c.url("/openai/v1/video/generations/jobs"), body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, newError(KindMalformedResponse, op, errors.New("response has no job id"))
	}
	job := out.toJob()
	if job.Status == JobUnknown {
		job.Status = JobQueued
	}
	c.logger.Debug().Str("job_id", job.ID).Msg("sora: job created")
	return job, nil
}

// GetJob fetches the current state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	const op = "get job status"
	var out jobPayload
	endpoint := c.url("/openai/v1/video/generations/jobs/" + url.PathEscape(jobID))
	if err := c.doJSON(ctx, op, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Status) == "" {
		return nil, newError(KindMalformedResponse, op, errors.New("response has no status"))
	}
	job := out.toJob()
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

// OpenContent starts streaming the video for a generation. Closing the
// returned body releases the download deadline.
func (c *Client) OpenContent(ctx context.Context, generationID string) (io.ReadCloser, error) {
	const op = "download content"
	dlCtx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	endpoint := c.url("/openai/v1/video/generations/" + url.PathEscape(generationID) + "/content/video")
	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, newError(KindRemoteRequestFailed, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("api-key", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, c.transportError(ctx, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		return nil, statusError(op, resp)
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, in, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return newError(KindInvalidRequest, op, fmt.Errorf("encode request: %w", err))
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(callCtx, method, endpoint, body)
	if err != nil {
		return newError(KindRemoteRequestFailed, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newError(KindMalformedResponse, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// transportError reports caller cancellation as the context error and
// everything else, per-call timeouts included, as a failed request.
func (c *Client) transportError(parent context.Context, op string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	return newError(KindRemoteRequestFailed, op, err)
}

func (c *Client) url(path string) string {
	return c.endpoint + path + "?api-version=" + apiVersion
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	_ = resp.Body.Close()
	return &Error{
		Kind:       KindRemoteRequestFailed,
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}
}

func (p jobPayload) toJob() *Job {
	job := &Job{
		ID:            strings.TrimSpace(p.ID),
		Status:        parseJobStatus(p.Status),
		FailureReason: strings.TrimSpace(p.FailureReason),
	}
	if p.CreatedAt > 0 {
		job.CreatedAt = time.Unix(p.CreatedAt, 0).UTC()
	}
	for _, g := range p.Generations {
		job.Generations = append(job.Generations, strings.TrimSpace(g.ID))
	}
	return job
}

// parseJobStatus keeps unrecognised statuses verbatim so the poller treats
// them as still in progress.
func parseJobStatus(raw string) JobStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return JobUnknown
	}
	return JobStatus(s)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
