package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fwtest/internal/config"
	"fwtest/internal/domain"
	"fwtest/internal/graph"
)

// WorkerPool builds nodes in parallel. A node starts only after every node
// it depends on has finished.
type WorkerPool struct {
	workers   int
	keepGoing bool
	runner    *Runner
	tests     TestIndex
	counter   CaseCounter
	progress  Progress
	logger    *slog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, tests TestIndex, counter CaseCounter, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		workers:   cfg.Processors,
		keepGoing: cfg.KeepGoing,
		runner:    runner,
		tests:     tests,
		counter:   counter,
		logger:    logger,
	}
}

// SetProgress sets the progress sink for test nodes
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute builds nodes, which must be ordered dependencies first as
// returned by graph.Resolve. Without keep-going no node is started after
// the first failure. The returned error wraps ErrBuildFailed when any node
// failed or was skipped.
func (wp *WorkerPool) Execute(ctx context.Context, nodes []*graph.Node) (*Report, error) {
	report := &Report{Builds: make([]domain.BuildResult, len(nodes))}
	if len(nodes) == 0 {
		return report, nil
	}

	index := make(map[*graph.Node]int, len(nodes))
	done := make([]chan struct{}, len(nodes))
	for i, n := range nodes {
		index[n] = i
		done[i] = make(chan struct{})
	}

	queue := make(chan int, len(nodes))
	for i := range nodes {
		queue <- i
	}
	close(queue)

	var mu sync.Mutex
	var stopped bool
	var completedTests, passedCases, failedCases int
	tests := make(map[int]domain.TestResult)
	startTime := time.Now()

	workerCount := wp.workers
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			// The queue is in dependency order, so every dependency of a
			// dequeued node was dequeued earlier and cannot wait on it.
			for i := range queue {
				n := nodes[i]
				failedDep := ""
				for _, dep := range buildableDeps(n, index) {
					<-done[dep]
					mu.Lock()
					ok := report.Builds[dep].Success()
					mu.Unlock()
					if !ok && failedDep == "" {
						failedDep = nodes[dep].Name
					}
				}

				mu.Lock()
				halt := stopped
				mu.Unlock()

				var result domain.BuildResult
				switch {
				case failedDep != "":
					result = domain.BuildResult{Target: n.Name, Status: domain.StatusSkipped, Error: fmt.Errorf("%w: %s", ErrDependencyFailed, failedDep)}
				case halt:
					result = domain.BuildResult{Target: n.Name, Status: domain.StatusSkipped, Error: ErrStopped}
				default:
					wp.logger.Debug("build", "worker", workerID, "target", n.Name)
					result = wp.runner.Run(ctx, n)
				}

				test, isTest := wp.testFor(n)
				result.IsTest = isTest

				mu.Lock()
				report.Builds[i] = result
				if result.Status == domain.StatusFailed && !wp.keepGoing {
					stopped = true
				}
				if isTest && result.Status != domain.StatusDryRun {
					tr := wp.testResult(test, result)
					tests[i] = tr
					completedTests++
					passedCases += tr.Passed
					failedCases += tr.Failed
					if wp.progress != nil {
						wp.progress.Update(completedTests, passedCases, failedCases)
					}
				}
				mu.Unlock()

				close(done[i])
			}
		}(w)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	for i := range nodes {
		if tr, ok := tests[i]; ok {
			report.Tests = append(report.Tests, tr)
		}
	}
	report.Duration = time.Since(startTime)

	if failed := report.Failed(); failed > 0 {
		return report, fmt.Errorf("%w: %d of %d target(s)", ErrBuildFailed, failed, len(nodes))
	}
	return report, nil
}

func (wp *WorkerPool) testFor(n *graph.Node) (domain.TestTarget, bool) {
	if wp.tests == nil {
		return domain.TestTarget{}, false
	}
	return wp.tests.Test(n)
}

// testResult turns the build of a result node into a test outcome
func (wp *WorkerPool) testResult(test domain.TestTarget, build domain.BuildResult) domain.TestResult {
	tr := domain.TestResult{
		Name:       test.Name,
		ResultFile: wp.runner.path(test.ResultFile),
		Ran:        build.Status == domain.StatusBuilt || build.Status == domain.StatusFailed,
		Success:    build.Status == domain.StatusBuilt,
		Output:     build.Output,
		Error:      build.Error,
		Duration:   build.Duration,
	}
	if !tr.Ran {
		return tr
	}

	if wp.counter != nil {
		tr.Passed, tr.Failed = wp.counter.ParseTestCounts(tr)
	} else if tr.Success {
		tr.Passed = 1
	} else {
		tr.Failed = 1
	}
	return tr
}

// buildableDeps returns the indexes of the nearest scheduled nodes n depends on
func buildableDeps(n *graph.Node, index map[*graph.Node]int) []int {
	var deps []int
	seen := make(map[*graph.Node]bool)
	var walk func(*graph.Node)
	walk = func(m *graph.Node) {
		for _, src := range m.Sources {
			if seen[src] {
				continue
			}
			seen[src] = true
			if i, ok := index[src]; ok {
				deps = append(deps, i)
				continue
			}
			walk(src)
		}
	}
	walk(n)
	return deps
}
