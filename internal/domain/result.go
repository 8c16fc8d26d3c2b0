package domain

import "time"

// NodeStatus is the outcome of building one graph node
type NodeStatus string

const (
	StatusBuilt    NodeStatus = "built"
	StatusUpToDate NodeStatus = "up_to_date"
	StatusFailed   NodeStatus = "failed"
	StatusSkipped  NodeStatus = "skipped" // a dependency failed or the run was stopped
	StatusDryRun   NodeStatus = "dry_run"
)

// BuildResult represents the result of building a single node
type BuildResult struct {
	Target   string        // Target path or name of the node
	Command  string        // Expanded command, empty for function actions
	Status   NodeStatus    // What happened
	Output   string        // Combined stdout and stderr
	Error    error         // Error if the build failed
	Duration time.Duration // Time taken to build
	IsTest   bool          // Whether the node runs a test program
}

// Success reports whether the node ended in a good state
func (r BuildResult) Success() bool {
	return r.Status != StatusFailed && r.Status != StatusSkipped
}

// TestResult is the outcome of one test program run
type TestResult struct {
	Name       string        // Test target name
	ResultFile string        // googletest XML written by the program
	Ran        bool          // Whether the program was executed at all
	Success    bool          // Whether the program exited cleanly
	Output     string        // Raw output from the program
	Error      error         // Error if execution failed
	Duration   time.Duration // Time taken to execute
	Passed     int           // Passed test cases
	Failed     int           // Failed test cases
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	Targets         []string `json:"targets"`
	TotalTests      int      `json:"total_tests"`
	FailedTests     int      `json:"failed_tests"`
	PassedTests     int      `json:"passed_tests"`
	PassedTestCases int      `json:"passed_test_cases"`
	FailedTestCases int      `json:"failed_test_cases"`
	Memcheck        bool     `json:"memcheck"`
	Duration        string   `json:"duration"`
	DurationSeconds float64  `json:"duration_seconds"`
	Workers         int      `json:"workers"`
	Timestamp       string   `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}
