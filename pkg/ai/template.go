package ai

import (
	"context"
	"fmt"
)

// TemplateGenerator produces deterministic placeholder questions. It is used
// when no AI provider is configured.
type TemplateGenerator struct{}

// NewTemplateGenerator constructs the template-backed generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Generate returns the fixed question template for the content type.
func (t *TemplateGenerator) Generate(_ context.Context, contentType string, course CourseInfo) ([]Question, error) {
	subject := course.Name
	if subject == "" {
		subject = "the course"
	}

	switch contentType {
	case "QUIZ":
		return []Question{
			{
				Question: fmt.Sprintf("Which statement about %s is correct?", subject),
				Options:  []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:   "Option A",
			},
			{
				Question: fmt.Sprintf("Which concept from %s applies here?", subject),
				Options:  []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:   "Option C",
			},
		}, nil
	case "ASSIGNMENT":
		return []Question{
			{Question: fmt.Sprintf("Complete the first practical task for %s.", subject), Points: 50},
			{Question: fmt.Sprintf("Complete the second practical task for %s.", subject), Points: 50},
		}, nil
	case "EXAM":
		return []Question{
			{
				Question: fmt.Sprintf("Multiple-choice question one for %s.", subject),
				Points:   20,
				Options:  []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:   "Option B",
			},
			{
				Question: fmt.Sprintf("Multiple-choice question two for %s.", subject),
				Points:   20,
				Options:  []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:   "Option D",
			},
			{
				Question: fmt.Sprintf("Essay question for %s.", subject),
				Points:   60,
				Essay:    true,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrGenerationFailed, contentType)
	}
}
