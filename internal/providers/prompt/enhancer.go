package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is reported to fallback hooks when chat settings are incomplete.
var ErrNotConfigured = errors.New("prompt: azure llm service is not configured")

// Idea categories, in the order the four prompts are produced.
const (
	CategoryHook       = "Hook"
	CategoryContent    = "Content"
	CategoryEngagement = "Engagement"
	CategoryCTA        = "CTA"
)

// Idea is one structured prompt for a section of a short-form video.
type Idea struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// IdeasRequest asks for the four section prompts of a video idea.
type IdeasRequest struct {
	Idea     string
	Enhanced bool
	Locale   string
}

// Enhancer rewrites video ideas and expands them into section prompts.
// Implementations never fail on remote errors; they degrade to static output.
type Enhancer interface {
	Enhance(ctx context.Context, idea, locale string) (string, error)
	Ideas(ctx context.Context, req IdeasRequest) ([]Idea, error)
}

// Settings configures the Azure OpenAI chat deployment.
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

// SettingsProvider supplies chat settings on every call so edits apply without a restart.
type SettingsProvider interface {
	ChatSettings(ctx context.Context) (Settings, error)
}

// StaticEnhancer works offline: ideas are returned unchanged and the canned
// section prompts are used.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(_ context.Context, idea, _ string) (string, error) {
	return idea, nil
}

func (s *StaticEnhancer) Ideas(_ context.Context, req IdeasRequest) ([]Idea, error) {
	return StaticIdeas(req.Idea), nil
}

// StaticIdeas returns the canned four-part prompt set for idea.
func StaticIdeas(idea string) []Idea {
	idea = strings.TrimSpace(idea)
	return []Idea{
		{
			Title:    "Opening Hook",
			Content:  fmt.Sprintf("Start with an attention-grabbing opening that immediately showcases the main concept: %s", idea),
			Category: CategoryHook,
		},
		{
			Title:    "Main Content",
			Content:  fmt.Sprintf("Create engaging content around: %s. Keep it fast-paced and visually interesting for maximum retention.", idea),
			Category: CategoryContent,
		},
		{
			Title:    "Engagement Boost",
			Content:  "Add interactive elements like questions, challenges, or calls for comments to increase viewer engagement and algorithm performance.",
			Category: CategoryEngagement,
		},
		{
			Title:    "Call to Action",
			Content:  "End with a strong call to action encouraging likes, follows, and shares. Use trending hashtags and encourage user-generated content.",
			Category: CategoryCTA,
		},
	}
}

var _ Enhancer = (*StaticEnhancer)(nil)
