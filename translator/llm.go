package translator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"

	"github.com/imkonsowa/nearme-nli/logger"
)

// apiKeyParam matches the credential the Gemini client puts in request URLs.
var apiKeyParam = regexp.MustCompile(`([?&]key=)[^&\s"]+`)

type LLMOptions struct {
	ModelName   string
	Temperature float64
	Timeout     time.Duration
}

// LLM asks a language model to translate the query. Each call is one
// generation bounded by the configured timeout.
type LLM struct {
	model  llms.Model
	prompt *Prompt
	opts   LLMOptions
	logger logger.Logger
}

func NewLLM(model llms.Model, prompt *Prompt, opts LLMOptions, log logger.Logger) *LLM {
	return &LLM{
		model:  model,
		prompt: prompt,
		opts:   opts,
		logger: log,
	}
}

func (l *LLM) Name() string {
	return l.opts.ModelName
}

func (l *LLM) Translate(ctx context.Context, query string) (Result, error) {
	text, err := l.prompt.Render(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}

	started := time.Now()
	resp, err := l.model.GenerateContent(ctx, messages, llms.WithTemperature(l.opts.Temperature))

	l.logger.Debug("generation finished", map[string]interface{}{
		"model":    l.opts.ModelName,
		"duration": time.Since(started).String(),
		"failed":   err != nil,
	})

	if err != nil {
		return l.classify(ctx, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Empty{}, nil
	}

	return Completed{Text: resp.Choices[0].Content}, nil
}

func (l *LLM) classify(ctx context.Context, err error) (Result, error) {
	var blocked *genai.BlockedError
	switch {
	case errors.As(err, &blocked):
		return Blocked{Reason: blockReason(blocked)}, nil
	case errors.Is(err, googleai.ErrNoContentInResponse):
		return Empty{}, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, l.opts.Timeout, redact(err))
	}

	return nil, fmt.Errorf("%w: %s", ErrGeneration, redact(err))
}

func redact(err error) string {
	return apiKeyParam.ReplaceAllString(err.Error(), "${1}REDACTED")
}

func blockReason(b *genai.BlockedError) string {
	switch {
	case b.PromptFeedback != nil:
		return b.PromptFeedback.BlockReason.String()
	case b.Candidate != nil:
		return b.Candidate.FinishReason.String()
	}

	return "unspecified"
}
