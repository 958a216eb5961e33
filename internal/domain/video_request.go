package domain

import (
	"fmt"
	"strings"
	"time"
)

// VideoRequestStatus enumerates the lifecycle of a queued generation.
type VideoRequestStatus string

const (
	VideoRequestQueued    VideoRequestStatus = "QUEUED"
	VideoRequestRunning   VideoRequestStatus = "RUNNING"
	VideoRequestSucceeded VideoRequestStatus = "SUCCEEDED"
	VideoRequestFailed    VideoRequestStatus = "FAILED"
)

func (s VideoRequestStatus) IsFinal() bool {
	return s == VideoRequestSucceeded || s == VideoRequestFailed
}

// VideoRequest is one queued text-to-video generation and its outcome.
type VideoRequest struct {
	ID           string
	Prompt       string
	Width        int
	Height       int
	Seconds      int
	Model        string
	Locale       string
	Status       VideoRequestStatus
	Progress     string
	OutputPath   string
	Bytes        int64
	RemoteJobID  string
	ErrorKind    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the caller-supplied fields of a new request.
func (r *VideoRequest) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Prompt) == "" {
		problems = append(problems, "prompt is required")
	}
	if r.Width <= 0 || r.Height <= 0 {
		problems = append(problems, fmt.Sprintf("invalid size %dx%d", r.Width, r.Height))
	}
	if r.Seconds <= 0 {
		problems = append(problems, fmt.Sprintf("invalid duration %ds", r.Seconds))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
