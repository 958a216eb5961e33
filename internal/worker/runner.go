// Package worker drains the video request queue one generation at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"viralvideos/internal/domain"
	"viralvideos/internal/infra"
	"viralvideos/internal/providers/video"
)

const (
	DefaultIdleInterval = 2 * time.Second
	finalizeTimeout     = 10 * time.Second
)

// Options configures a Runner.
type Options struct {
	Repo      domain.VideoRequestRepository
	Generator video.Generator
	// Status is the board the generator reports to. Its messages are copied
	// onto the running request.
	Status       *video.StatusBoard
	Logger       *infra.Logger
	IdleInterval time.Duration
	Sleep        video.SleepFunc
}

// Runner claims queued requests and runs them through the generator.
type Runner struct {
	repo         domain.VideoRequestRepository
	generator    video.Generator
	status       *video.StatusBoard
	logger       *infra.Logger
	idleInterval time.Duration
	sleep        video.SleepFunc
}

func NewRunner(opts Options) (*Runner, error) {
	if opts.Repo == nil {
		return nil, errors.New("worker: repository is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("worker: generator is required")
	}
	r := &Runner{
		repo:         opts.Repo,
		generator:    opts.Generator,
		status:       opts.Status,
		logger:       opts.Logger,
		idleInterval: opts.IdleInterval,
		sleep:        opts.Sleep,
	}
	if r.status == nil {
		r.status = video.DefaultStatus
	}
	if r.logger == nil {
		l := zerolog.New(io.Discard)
		r.logger = &l
	}
	if r.idleInterval <= 0 {
		r.idleInterval = DefaultIdleInterval
	}
	if r.sleep == nil {
		r.sleep = video.SleepContext
	}
	return r, nil
}

// Run processes requests until ctx is done and then returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().Dur("idle_interval", r.idleInterval).Msg("worker: started")
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info().Msg("worker: stopping")
			return err
		}
		worked, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("worker: iteration failed")
		}
		if worked {
			continue
		}
		if err := r.sleep(ctx, r.idleInterval); err != nil {
			return err
		}
	}
}

// RunOnce claims and processes at most one request. It reports whether a
// request was claimed.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	req, err := r.repo.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("worker: claim: %w", err)
	}
	return true, r.process(ctx, req)
}

func (r *Runner) process(ctx context.Context, req *domain.VideoRequest) error {
	log := r.logger.With().Str("request_id", req.ID).Logger()
	log.Info().Int("width", req.Width).Int("height", req.Height).Int("seconds", req.Seconds).Msg("worker: picked request")

	stop := r.status.OnChange(func(msg string) {
		if ctx.Err() != nil {
			return
		}
		if err := r.repo.UpdateProgress(ctx, req.ID, msg); err != nil {
			log.Warn().Err(err).Msg("worker: progress update failed")
		}
	})
	res, genErr := r.generator.GenerateVideo(ctx, video.GenerationRequest{
		Prompt:  req.Prompt,
		Width:   req.Width,
		Height:  req.Height,
		Seconds: req.Seconds,
		Model:   req.Model,
	})
	stop()

	// Caller cancellation leaves the row RUNNING so the next start requeues it.
	if genErr != nil && ctx.Err() != nil && errors.Is(genErr, ctx.Err()) {
		log.Warn().Err(genErr).Msg("worker: generation interrupted")
		return nil
	}

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if genErr != nil {
		kind := string(video.KindOf(genErr))
		if kind == "" {
			kind = "internal"
		}
		log.Error().Err(genErr).Str("kind", kind).Msg("worker: generation failed")
		if err := r.repo.MarkFailed(fctx, req.ID, kind, genErr.Error()); err != nil {
			return fmt.Errorf("worker: mark failed: %w", err)
		}
		return nil
	}

	if err := r.repo.MarkSucceeded(fctx, req.ID, domain.VideoResult{
		Progress:    r.status.Get(),
		OutputPath:  res.Path,
		Bytes:       res.Bytes,
		RemoteJobID: res.JobID,
	}); err != nil {
		return fmt.Errorf("worker: mark succeeded: %w", err)
	}
	log.Info().Str("path", res.Path).Int64("bytes", res.Bytes).Dur("elapsed", res.Elapsed).Msg("worker: request succeeded")
	return nil
}
