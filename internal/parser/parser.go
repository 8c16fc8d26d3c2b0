package parser

import "fwtest/internal/domain"

// Parser reads test outcomes for a finished test run
type Parser interface {
	ParseTestCounts(result domain.TestResult) (passed, failed int)
	ParseFailure(result domain.TestResult) []domain.TestFailure
}
