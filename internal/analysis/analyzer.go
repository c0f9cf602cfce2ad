// Package analysis asks a language model to assess a resume against a job
// description and enforces a structured output contract on the response.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/talentsift/resume-screener/internal/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Analyzer composes the analysis prompt, submits it through a content
// generator, and parses the response against the output schema.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalyzer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Analyze submits one resume for assessment. The returned error is a
// *SchemaError when the model answered but the answer did not fit the
// schema; transport failures come back wrapped as-is.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (*ResumeAnalysis, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.New("resume text is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("job description is required")
	}

	prompt := buildPrompt(resumeText, jobDescription)

	a.logger.Debug("analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("requesting analysis: %w", err)
	}

	a.logger.Debug("analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(resumeText, jobDescription string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", resumeText)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{FORMAT_INSTRUCTIONS}}", formatInstructions(outputSchema))
	return prompt
}
