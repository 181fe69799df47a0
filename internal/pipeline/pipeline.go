// Package pipeline runs uploaded documents through extraction, normalization and storage.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/document"
	"github.com/spigell/resume-sieve/internal/extraction"
	"github.com/spigell/resume-sieve/internal/logger"
	"github.com/spigell/resume-sieve/internal/metrics"
	"github.com/spigell/resume-sieve/internal/store"
)

type Status string

const (
	StatusAdded    Status = "added"
	StatusReplaced Status = "replaced"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

const kindCanceled = "canceled"

// FileResult is the outcome of one document.
type FileResult struct {
	FileName    string
	Status      Status
	CandidateID string
	Attempts    int
	Warnings    []string
	// Kind is a short label of the failure, empty on success.
	Kind string
	Err  error
}

// ResumeParser turns resume text into a structured payload.
type ResumeParser interface {
	ParseResume(ctx context.Context, resumeText string) (*extraction.Result, error)
}

// Processor handles batches one document at a time; a failing document never stops the batch.
type Processor struct {
	// Extract defaults to document.Extract.
	Extract    func(document.File) (string, error)
	Normalizer *candidate.Normalizer

	parser ResumeParser
	store  *store.Store
	logger *zap.Logger
}

func NewProcessor(parser ResumeParser, st *store.Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		Extract:    document.Extract,
		Normalizer: candidate.NewNormalizer(),
		parser:     parser,
		store:      st,
		logger:     logger,
	}
}

// ProcessPaths loads the files from disk and processes them.
func (p *Processor) ProcessPaths(ctx context.Context, paths []string, overwrite bool) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		file, err := document.FromPath(path)
		if err != nil {
			results = append(results, p.failed(file.Name, 0, err))
			continue
		}
		results = append(results, p.process(ctx, file, overwrite))
	}
	return results
}

// Process runs every file through the pipeline in order.
func (p *Processor) Process(ctx context.Context, files []document.File, overwrite bool) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		results = append(results, p.process(ctx, file, overwrite))
	}
	return results
}

func (p *Processor) process(ctx context.Context, file document.File, overwrite bool) FileResult {
	if err := ctx.Err(); err != nil {
		return p.failed(file.Name, 0, err)
	}

	if !overwrite && p.store.HasFile(file.Name) {
		return p.done(FileResult{FileName: file.Name, Status: StatusSkipped})
	}

	text, err := p.Extract(file)
	if err != nil {
		return p.failed(file.Name, 0, err)
	}

	parsed, err := p.parser.ParseResume(ctx, text)
	if err != nil {
		attempts := 0
		var clientErr *extraction.ClientError
		if errors.As(err, &clientErr) {
			attempts = clientErr.Attempts
		}
		return p.failed(file.Name, attempts, err)
	}

	rec := p.Normalizer.Normalize(parsed.Payload, file.Name)

	added, err := p.store.Add(rec, overwrite)
	if err != nil {
		return p.failed(file.Name, parsed.Attempts, err)
	}

	result := FileResult{
		FileName: file.Name,
		Attempts: parsed.Attempts,
		Warnings: parsed.Warnings,
	}
	switch added {
	case store.Added:
		result.Status = StatusAdded
		result.CandidateID = rec.ID
	case store.Replaced:
		result.Status = StatusReplaced
		result.CandidateID = rec.ID
	default:
		result.Status = StatusSkipped
	}

	return p.done(result)
}

func (p *Processor) done(result FileResult) FileResult {
	metrics.DocumentsTotal.WithLabelValues(string(result.Status)).Inc()
	fields := append(logger.DocumentFields(result.FileName, result.CandidateID, ""), zap.Int("attempts", result.Attempts))
	p.logger.Info("document "+string(result.Status), fields...)
	return result
}

func (p *Processor) failed(fileName string, attempts int, err error) FileResult {
	kind := KindName(err)

	metrics.DocumentsTotal.WithLabelValues(string(StatusFailed)).Inc()
	fields := append(logger.DocumentFields(fileName, "", kind), zap.Int("attempts", attempts), zap.Error(err))
	p.logger.Warn("document failed", fields...)

	return FileResult{
		FileName: fileName,
		Status:   StatusFailed,
		Attempts: attempts,
		Kind:     kind,
		Err:      err,
	}
}

// KindName labels pipeline errors for display.
func KindName(err error) string {
	if kind := document.KindName(err); kind != "" {
		return kind
	}
	if kind := extraction.KindName(err); kind != "" {
		return kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return kindCanceled
	}
	return "internal"
}

// Summary counts results by status.
func Summary(results []FileResult) map[Status]int {
	summary := make(map[Status]int, 4)
	for _, r := range results {
		summary[r.Status]++
	}
	return summary
}
