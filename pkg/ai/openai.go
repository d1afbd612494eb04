package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "acadex",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI question generation requests",
	}, []string{"model"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "acadex",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of AI question generation failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/acadex/acadex-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Generate asks the model for a question list and parses the JSON response.
func (g *OpenAIGenerator) Generate(parent context.Context, contentType string, course CourseInfo) ([]Question, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("content_type", contentType),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: generatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGenerationPrompt(contentType, course),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 {
		generationFailures.WithLabelValues(g.cfg.Model).Inc()
		err := fmt.Errorf("%w: no choices returned", ErrGenerationFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	questions, err := parseGenerationResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		generationFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return questions, nil
}

func generatorSystemPrompt() string {
	return "You are an assessment author for a university. Respond with a JSON object of the form " +
		`{"questions": [...]} where each question has a "question" field and, depending on the requested ` +
		"type, \"options\" plus \"answer\" (quiz), \"points\" (assignment), or \"points\" with either " +
		"options+answer or \"essay\": true (exam)."
}

func buildGenerationPrompt(contentType string, course CourseInfo) string {
	builder := strings.Builder{}
	builder.WriteString("Generate a ")
	builder.WriteString(strings.ToLower(contentType))
	builder.WriteString(" for the course ")
	builder.WriteString(course.Name)
	if course.Code != "" {
		builder.WriteString(" (")
		builder.WriteString(course.Code)
		builder.WriteString(")")
	}
	if len(course.Outcomes) > 0 {
		builder.WriteString(". Cover these learning outcomes:\n")
		for _, outcome := range course.Outcomes {
			builder.WriteString("- ")
			builder.WriteString(outcome)
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseGenerationResponse(content string) ([]Question, error) {
	var payload struct {
		Questions []Question `json:"questions"`
	}

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: parse generation json: %v", ErrGenerationFailed, err)
	}

	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("%w: empty question list", ErrGenerationFailed)
	}

	return payload.Questions, nil
}
