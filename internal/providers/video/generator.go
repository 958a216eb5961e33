package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"viralvideos/internal/infra"
)

// State is a step of the generation state machine.
type State int32

const (
	StateIdle State = iota
	StateConfiguring
	StateSubmitting
	StatePolling
	StateDownloading
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateDownloading:
		return "downloading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Options configures a SoraGenerator.
type Options struct {
	Settings SettingsProvider
	Sink     Sink
	// Status receives progress messages. Defaults to DefaultStatus.
	Status     *StatusBoard
	HTTPClient *http.Client
	Logger     *infra.Logger

	PollInterval    time.Duration
	MaxPolls        int
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration

	// Sleep and Now exist for tests.
	Sleep SleepFunc
	Now   func() time.Time
}

// SoraGenerator runs one generation at a time against the Sora jobs API.
type SoraGenerator struct {
	settings        SettingsProvider
	sink            Sink
	status          *StatusBoard
	httpClient      *http.Client
	logger          *infra.Logger
	pollInterval    time.Duration
	maxPolls        int
	requestTimeout  time.Duration
	downloadTimeout time.Duration
	sleep           SleepFunc
	now             func() time.Time

	inFlight sync.Mutex
	state    atomic.Int32
}

// ErrBusy is wrapped in the KindInvalidRequest error returned when a second
// generation is started on a generator that is still working.
var ErrBusy = errors.New("a video generation is already in progress")

func NewGenerator(opts Options) (*SoraGenerator, error) {
	if opts.Settings == nil {
		return nil, errors.New("sora: settings provider is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("sora: output sink is required")
	}
	g := &SoraGenerator{
		settings:        opts.Settings,
		sink:            opts.Sink,
		status:          opts.Status,
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger,
		pollInterval:    opts.PollInterval,
		maxPolls:        opts.MaxPolls,
		requestTimeout:  opts.RequestTimeout,
		downloadTimeout: opts.DownloadTimeout,
		sleep:           opts.Sleep,
		now:             opts.Now,
	}
	if g.status == nil {
		g.status = DefaultStatus
	}
	if g.logger == nil {
		l := zerolog.New(io.Discard)
		g.logger = &l
	}
	if g.pollInterval <= 0 {
		g.pollInterval = DefaultPollInterval
	}
	if g.maxPolls <= 0 {
		g.maxPolls = DefaultMaxPolls
	}
	if g.sleep == nil {
		g.sleep = SleepContext
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g, nil
}

// State returns the current step of the running or last generation.
func (g *SoraGenerator) State() State {
	return State(g.state.Load())
}

// Status returns the board progress messages are written to.
func (g *SoraGenerator) Status() *StatusBoard {
	return g.status
}

// GenerateVideo submits req, waits for the remote job to finish and saves
// the video. The first failure is returned as is.
func (g *SoraGenerator) GenerateVideo(ctx context.Context, req GenerationRequest) (*Result, error) {
	if !g.inFlight.TryLock() {
		return nil, newError(KindInvalidRequest, "generate video", ErrBusy)
	}
	defer g.inFlight.Unlock()

	started := g.now()
	log := g.logger.With().Str("component", "sora").Logger()

	if err := ctx.Err(); err != nil {
		return nil, g.fail(&log, err)
	}

	g.enter(&log, StateConfiguring, "Initializing video generation...")
	settings, err := g.settings.SoraSettings(ctx)
	if err != nil {
		return nil, g.fail(&log, newError(KindNotConfigured, "load settings", err))
	}
	if !settings.IsConfigured() {
		return nil, g.fail(&log, newError(KindNotConfigured, "load settings", errors.New("endpoint, api key and deployment are required")))
	}
	if err := g.sink.EnsureDir(); err != nil {
		return nil, g.fail(&log, newError(KindLocalWriteFailed, "ensure output directory", err))
	}
	client, err := NewClient(ClientOptions{
		Settings:        settings,
		HTTPClient:      g.httpClient,
		RequestTimeout:  g.requestTimeout,
		DownloadTimeout: g.downloadTimeout,
		Logger:          &log,
	})
	if err != nil {
		return nil, g.fail(&log, err)
	}

	g.enter(&log, StateSubmitting, "Creating video generation job...")
	req, err = normalizeRequest(req, settings)
	if err != nil {
		return nil, g.fail(&log, err)
	}
	if !IsSupportedSize(req.Width, req.Height) {
		log.Warn().Int("width", req.Width).Int("height", req.Height).Msg("sora: resolution is not in the supported list, sending as is")
	}
	job, err := client.CreateJob(ctx, req)
	if err != nil {
		return nil, g.fail(&log, err)
	}
	log = log.With().Str("job_id", job.ID).Logger()

	g.enter(&log, StatePolling, fmt.Sprintf("Video generation job %s created", job.ID))
	p := &poller{
		client:   client,
		interval: g.pollInterval,
		maxPolls: g.maxPolls,
		sleep:    g.sleep,
		status:   g.status,
		logger:   &log,
	}
	job, err = p.wait(ctx, job.ID)
	if err != nil {
		return nil, g.fail(&log, err)
	}

	g.enter(&log, StateDownloading, "Downloading generated video...")
	d := &downloader{client: client, sink: g.sink, logger: &log}
	art, err := d.download(ctx, job, DeriveFilename(g.now(), req.Prompt))
	if err != nil {
		return nil, g.fail(&log, err)
	}

	elapsed := g.now().Sub(started)
	g.enter(&log, StateDone, fmt.Sprintf("Video generation completed in %dm %ds", int(elapsed.Minutes()), int(elapsed.Seconds())%60))
	return &Result{
		Path:         art.Path,
		Bytes:        art.Bytes,
		JobID:        job.ID,
		GenerationID: art.GenerationID,
		Elapsed:      elapsed,
	}, nil
}

func (g *SoraGenerator) enter(log *zerolog.Logger, s State, msg string) {
	g.state.Store(int32(s))
	g.status.Set(msg)
	log.Info().Str("state", s.String()).Msg(msg)
}

func (g *SoraGenerator) fail(log *zerolog.Logger, err error) error {
	g.state.Store(int32(StateFailed))
	g.status.Set("Error: " + err.Error())
	log.Error().Err(err).Str("state", StateFailed.String()).Str("kind", string(KindOf(err))).Msg("sora: video generation failed")
	return err
}

func normalizeRequest(req GenerationRequest, settings Settings) (GenerationRequest, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" {
		req.Model = strings.TrimSpace(settings.Deployment)
	}
	var problems []string
	if req.Prompt == "" {
		problems = append(problems, "prompt is required")
	}
	if req.Width <= 0 || req.Height <= 0 {
		problems = append(problems, fmt.Sprintf("invalid size %dx%d", req.Width, req.Height))
	}
	if req.Seconds <= 0 {
		problems = append(problems, fmt.Sprintf("invalid duration %ds", req.Seconds))
	}
	if len(problems) > 0 {
		return req, newError(KindInvalidRequest, "validate request", errors.New(strings.Join(problems, "; ")))
	}
	return req, nil
}

var _ Generator = (*SoraGenerator)(nil)
