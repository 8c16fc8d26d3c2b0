package execution

import (
	"context"
	"errors"
	"time"

	"fwtest/internal/domain"
	"fwtest/internal/graph"
)

var (
	// ErrDependencyFailed marks nodes skipped because something they need failed
	ErrDependencyFailed = errors.New("dependency failed")
	// ErrStopped marks nodes skipped after an earlier failure
	ErrStopped = errors.New("stopped after earlier failure")
	// ErrBuildFailed is returned when at least one node failed
	ErrBuildFailed = errors.New("build failed")
)

// Report is the outcome of one execution
type Report struct {
	Builds   []domain.BuildResult // one per node, in resolve order
	Tests    []domain.TestResult  // one per test result node, in resolve order
	Duration time.Duration
}

// Failed returns the number of failed or skipped nodes
func (r *Report) Failed() int {
	n := 0
	for _, b := range r.Builds {
		if !b.Success() {
			n++
		}
	}
	return n
}

// Executor builds resolved graph nodes
type Executor interface {
	Execute(ctx context.Context, nodes []*graph.Node) (*Report, error)
}

// TestIndex identifies result nodes that run a test program
type TestIndex interface {
	Test(n *graph.Node) (domain.TestTarget, bool)
}

// CaseCounter extracts passed and failed case counts from a finished test
type CaseCounter interface {
	ParseTestCounts(result domain.TestResult) (passed, failed int)
}

// Progress receives test progress updates
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}
