package storage

import (
	"context"
	"time"

	"fwtest/internal/domain"
)

// Storage persists and loads run summaries (e.g. for the failures viewer).
type Storage interface {
	Save(output *domain.TestResultsOutput) error
	Load() (*domain.TestResultsOutput, error)
}

// Sink receives finished run summaries without reading them back
type Sink interface {
	Record(ctx context.Context, output *domain.TestResultsOutput) error
}

// RunInfo describes the invocation a summary belongs to
type RunInfo struct {
	Targets  []string
	Memcheck bool
	Workers  int
	Duration time.Duration
}

// Summarize builds the summary of a run from its test results and failures
func Summarize(results []domain.TestResult, failures []domain.TestFailure, info RunInfo) *domain.TestResultsOutput {
	meta := domain.TestResultsMeta{
		Targets:         append([]string{}, info.Targets...),
		TotalTests:      len(results),
		Memcheck:        info.Memcheck,
		Duration:        info.Duration.String(),
		DurationSeconds: info.Duration.Seconds(),
		Workers:         info.Workers,
		Timestamp:       time.Now().Format(time.RFC3339),
	}
	for _, r := range results {
		if r.Success {
			meta.PassedTests++
		} else {
			meta.FailedTests++
		}
		meta.PassedTestCases += r.Passed
		meta.FailedTestCases += r.Failed
	}

	if failures == nil {
		failures = []domain.TestFailure{}
	}
	return &domain.TestResultsOutput{Meta: meta, Details: failures}
}
