// Package video orchestrates remote Sora video generation jobs: submit a
// generation request, poll the job until it settles, and stream the
// resulting artifact to local storage.
package video

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GenerationRequest describes a single video to generate.
type GenerationRequest struct {
	Prompt  string
	Width   int
	Height  int
	Seconds int
	// Model is the deployment identifier. Blank uses the configured deployment.
	Model string
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// SupportedSizes lists the resolutions the service documents. Other sizes
// are passed through unvalidated.
var SupportedSizes = []Size{
	{Width: 480, Height: 480},
	{Width: 854, Height: 480},
	{Width: 720, Height: 720},
	{Width: 1280, Height: 720},
	{Width: 1080, Height: 1080},
	{Width: 1920, Height: 1080},
}

// IsSupportedSize reports whether width x height is a documented resolution.
func IsSupportedSize(width, height int) bool {
	for _, s := range SupportedSizes {
		if s.Width == width && s.Height == height {
			return true
		}
	}
	return false
}

// JobStatus is the remote job state as reported by the status endpoint.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
	JobUnknown   JobStatus = "unknown"
)

// IsTerminal reports whether polling should stop at this status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobSucceeded, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// Job is the remote generation job tracked during one GenerateVideo call.
type Job struct {
	ID            string
	Status        JobStatus
	CreatedAt     time.Time
	FailureReason string
	// Generations holds the generation ids of a succeeded job, in order.
	Generations []string
}

// Result is the outcome of a successful generation.
type Result struct {
	Path         string
	Bytes        int64
	JobID        string
	GenerationID string
	Elapsed      time.Duration
}

// Settings holds the remote service configuration.
type Settings struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// IsConfigured reports whether every required setting is non-blank.
func (s Settings) IsConfigured() bool {
	return strings.TrimSpace(s.Endpoint) != "" &&
		strings.TrimSpace(s.APIKey) != "" &&
		strings.TrimSpace(s.Deployment) != ""
}

// SettingsProvider supplies Settings at the start of each generation.
type SettingsProvider interface {
	SoraSettings(ctx context.Context) (Settings, error)
}

// StaticSettings is a SettingsProvider returning fixed values.
type StaticSettings Settings

func (s StaticSettings) SoraSettings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// Generator is implemented by anything that can turn a request into a video file.
type Generator interface {
	GenerateVideo(ctx context.Context, req GenerationRequest) (*Result, error)
}
