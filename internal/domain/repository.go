package domain

import "context"

// VideoRequestRepository persists the video generation queue.
type VideoRequestRepository interface {
	Enqueue(ctx context.Context, req *VideoRequest) error
	// ClaimNext moves the oldest queued request to RUNNING. It returns
	// ErrNotFound when the queue is empty.
	ClaimNext(ctx context.Context) (*VideoRequest, error)
	UpdateProgress(ctx context.Context, id, progress string) error
	MarkSucceeded(ctx context.Context, id string, result VideoResult) error
	MarkFailed(ctx context.Context, id, kind, message string) error
	RequeueRunning(ctx context.Context) (int64, error)
	Get(ctx context.Context, id string) (*VideoRequest, error)
	ListRecent(ctx context.Context, limit, offset int) ([]VideoRequest, error)
}

// VideoResult is what a finished generation records.
type VideoResult struct {
	Progress    string
	OutputPath  string
	Bytes       int64
	RemoteJobID string
}
