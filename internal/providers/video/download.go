package video

import (
	"context"
	"errors"
	"fmt"
	"io"

	"viralvideos/internal/infra"
)

// Sink opens the destination for an artifact. EnsureDir creates the output
// directory if absent and must be idempotent. Create must make any missing
// parent directories and truncate an existing file. It returns the absolute
// path of the file it opened.
type Sink interface {
	EnsureDir() error
	Create(ctx context.Context, name string) (io.WriteCloser, string, error)
}

type contentOpener interface {
	OpenContent(ctx context.Context, generationID string) (io.ReadCloser, error)
}

type artifact struct {
	Path         string
	Bytes        int64
	GenerationID string
}

type downloader struct {
	client contentOpener
	sink   Sink
	logger *infra.Logger
}

// download streams the first generation of a succeeded job into name.
// No file is created unless the service returned the content. A partially
// written file is left in place on failure.
func (d *downloader) download(ctx context.Context, job *Job, name string) (*artifact, error) {
	if job == nil || len(job.Generations) == 0 {
		return nil, newError(KindMalformedResponse, "download content", errors.New("succeeded job has no generations"))
	}
	genID := job.Generations[0]
	if genID == "" {
		return nil, newError(KindMalformedResponse, "download content", errors.New("generation has no id"))
	}

	body, err := d.client.OpenContent(ctx, genID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	out, path, err := d.sink.Create(ctx, name)
	if err != nil {
		return nil, newError(KindLocalWriteFailed, "create output", err)
	}

	w := &trackingWriter{w: out}
	n, copyErr := io.Copy(w, body)
	closeErr := out.Close()
	switch {
	case copyErr != nil && w.err != nil:
		return nil, newError(KindLocalWriteFailed, "write output", fmt.Errorf("%s: %w", path, w.err))
	case copyErr != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newError(KindRemoteRequestFailed, "download content", copyErr)
	case closeErr != nil:
		return nil, newError(KindLocalWriteFailed, "close output", fmt.Errorf("%s: %w", path, closeErr))
	}

	d.logger.Info().Str("job_id", job.ID).Str("generation_id", genID).Str("path", path).Int64("bytes", n).Msg("sora: video saved")
	return &artifact{Path: path, Bytes: n, GenerationID: genID}, nil
}

// trackingWriter remembers write errors so they can be told apart from
// read errors surfaced by io.Copy.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}
