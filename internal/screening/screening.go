// Package screening drives the per-resume pipeline over a directory of
// PDF files: extract text and links, match contact fields, request the
// model analysis, and merge everything into one record per resume.
package screening

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/talentsift/resume-screener/internal/analysis"
	"github.com/talentsift/resume-screener/internal/contacts"
	"github.com/talentsift/resume-screener/internal/pdfdoc"
	"go.uber.org/zap"
)

const pdfExtension = ".pdf"

// Record is the merged result for one processed resume.
type Record struct {
	File     string
	Contact  contacts.Info
	Analysis analysis.ResumeAnalysis
}

// Outcome is the per-file result of a batch run. Exactly one of Record
// and Err is set. A failed file does not stop the rest of the batch; the
// caller decides what to do with the failures.
type Outcome struct {
	File   string
	Record *Record
	Err    error
}

// ExtractFunc produces document content for a file path.
type ExtractFunc func(path string) (*pdfdoc.Content, error)

// Analyzer assesses extracted resume text against a job description.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*analysis.ResumeAnalysis, error)
}

// Runner processes resume files strictly sequentially.
type Runner struct {
	extract  ExtractFunc
	analyzer Analyzer
	logger   *zap.Logger
}

func NewRunner(extract ExtractFunc, analyzer Analyzer, log *zap.Logger) *Runner {
	if extract == nil {
		extract = pdfdoc.Extract
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Runner{
		extract:  extract,
		analyzer: analyzer,
		logger:   log,
	}
}

// Run processes every file in dir whose name ends in ".pdf" (case-sensitive,
// directory listing order) against the batch-invariant job description.
// It returns one Outcome per qualifying file, in processing order. Only a
// failure to read the directory itself fails the whole run.
func (r *Runner) Run(ctx context.Context, dir, jobDescription string) ([]Outcome, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading resumes directory: %w", err)
	}

	var outcomes []Outcome
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, pdfExtension) {
			continue
		}

		record, err := r.processFile(ctx, filepath.Join(dir, name), jobDescription)
		if err != nil {
			r.logger.Warn("resume processing failed",
				zap.String("file", name),
				zap.Error(err),
			)
			outcomes = append(outcomes, Outcome{File: name, Err: err})
			continue
		}

		r.logger.Info("resume processed",
			zap.String("file", name),
			zap.String("candidate", record.Analysis.Name),
			zap.Bool("is_match", record.Analysis.IsMatch),
		)
		outcomes = append(outcomes, Outcome{File: name, Record: record})
	}

	return outcomes, nil
}

func (r *Runner) processFile(ctx context.Context, path, jobDescription string) (*Record, error) {
	content, err := r.extract(path)
	if err != nil {
		return nil, err
	}

	info := contacts.Extract(content.Text, content.Links)

	result, err := r.analyzer.Analyze(ctx, content.Text, jobDescription)
	if err != nil {
		return nil, err
	}

	return &Record{
		File:     filepath.Base(path),
		Contact:  info,
		Analysis: *result,
	}, nil
}

// Records collects the successful outcomes in processing order.
func Records(outcomes []Outcome) []Record {
	records := make([]Record, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Record != nil {
			records = append(records, *outcome.Record)
		}
	}
	return records
}

// Failed counts the outcomes that carry an error.
func Failed(outcomes []Outcome) int {
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}
