package ai

import (
	"context"
	"errors"
)

// ErrGenerationFailed marks any generator failure (network, timeout or a
// malformed response) so callers can map it to a retryable error.
var ErrGenerationFailed = errors.New("content generation failed")

// CourseInfo carries the course context handed to the generator.
type CourseInfo struct {
	Name     string
	Code     string
	Outcomes []string
}

// Question is one generated question record.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Points   int      `json:"points,omitempty"`
	Essay    bool     `json:"essay,omitempty"`
}

// Generator produces an ordered list of question records for a content type.
type Generator interface {
	Generate(ctx context.Context, contentType string, course CourseInfo) ([]Question, error)
}
