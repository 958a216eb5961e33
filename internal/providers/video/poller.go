package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viralvideos/internal/infra"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxPolls     = 120
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the production SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type jobGetter interface {
	GetJob(ctx context.Context, jobID string) (*Job, error)
}

// poller waits for a job to settle. Every attempt is preceded by a wait, and
// the number of attempts is bounded by maxPolls regardless of elapsed time.
type poller struct {
	client   jobGetter
	interval time.Duration
	maxPolls int
	sleep    SleepFunc
	status   *StatusBoard
	logger   *infra.Logger
}

func (p *poller) wait(ctx context.Context, jobID string) (*Job, error) {
	const op = "poll job"
	last := JobQueued
	for n := 1; n <= p.maxPolls; n++ {
		p.status.Set(fmt.Sprintf("Video generation in progress, status %s: poll %d/%d", last, n, p.maxPolls))
		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, err
		}
		job, err := p.client.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		last = job.Status
		p.logger.Debug().Str("job_id", jobID).Int("poll", n).Str("status", string(job.Status)).Msg("sora: polled job")

		if job.Status.IsTerminal() {
			if job.Status == JobSucceeded {
				return job, nil
			}
			e := &Error{Kind: KindGenerationFailed, Op: op, Status: job.Status}
			if job.FailureReason != "" {
				e.Err = errors.New(job.FailureReason)
			}
			return nil, e
		}
		if job.Status != JobQueued && job.Status != JobRunning {
			p.logger.Debug().Str("job_id", jobID).Str("status", string(job.Status)).Msg("sora: unrecognised status, still waiting")
		}
	}
	return nil, &Error{
		Kind: KindGenerationTimedOut,
		Op:   op,
		Err:  fmt.Errorf("job %s still %s after %d polls", jobID, last, p.maxPolls),
	}
}
