package parser

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"fwtest/internal/domain"
)

// GTestParser parses googletest XML result files
type GTestParser struct{}

// NewGTestParser creates a new GTestParser
func NewGTestParser() *GTestParser {
	return &GTestParser{}
}

// Report mirrors the <testsuites> document written by --gtest_output=xml
type Report struct {
	XMLName  xml.Name `xml:"testsuites"`
	Tests    int      `xml:"tests,attr"`
	Failures int      `xml:"failures,attr"`
	Disabled int      `xml:"disabled,attr"`
	Errors   int      `xml:"errors,attr"`
	Time     string   `xml:"time,attr"`
	Suites   []Suite  `xml:"testsuite"`
}

// Suite is one <testsuite>
type Suite struct {
	Name     string `xml:"name,attr"`
	Tests    int    `xml:"tests,attr"`
	Failures int    `xml:"failures,attr"`
	Cases    []Case `xml:"testcase"`
}

// Case is one <testcase>
type Case struct {
	Name      string    `xml:"name,attr"`
	ClassName string    `xml:"classname,attr"`
	Status    string    `xml:"status,attr"`
	Result    string    `xml:"result,attr"`
	Failures  []Failure `xml:"failure"`
	Skipped   *struct{} `xml:"skipped"`
}

// Failure is one <failure> of a case
type Failure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// Failed reports whether the case recorded at least one failure
func (c Case) Failed() bool {
	return len(c.Failures) > 0
}

// Ran reports whether the case was executed
func (c Case) Ran() bool {
	return c.Status != "notrun" && c.Result != "skipped" && c.Result != "suppressed" && c.Skipped == nil
}

// locationPattern matches the "file:line" googletest puts before a failure message
var locationPattern = regexp.MustCompile(`^(\S+?):(\d+)\s*$`)

// ParseFile reads and decodes one result file
func (p *GTestParser) ParseFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse decodes a result document
func (p *GTestParser) Parse(data []byte) (*Report, error) {
	var report Report
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}
	return &report, nil
}

// ParseTestCounts returns passed and failed test case counts for a run.
// If the result file cannot be read it counts the program as one case,
// passed or failed by its exit status.
func (p *GTestParser) ParseTestCounts(result domain.TestResult) (passed, failed int) {
	report, err := p.ParseFile(result.ResultFile)
	if err != nil {
		if result.Success {
			return 1, 0
		}
		return 0, 1
	}

	for _, suite := range report.Suites {
		for _, c := range suite.Cases {
			switch {
			case c.Failed():
				failed++
			case c.Ran():
				passed++
			}
		}
	}

	// A crash after the XML was written still fails the program.
	if !result.Success && failed == 0 {
		failed = 1
	}
	return passed, failed
}

// ParseFailure returns one failure per failed test case. A failed program
// without readable failures yields a single failure holding its output.
func (p *GTestParser) ParseFailure(result domain.TestResult) []domain.TestFailure {
	var failures []domain.TestFailure

	report, err := p.ParseFile(result.ResultFile)
	if err == nil {
		for _, suite := range report.Suites {
			for _, c := range suite.Cases {
				if !c.Failed() {
					continue
				}
				failures = append(failures, p.caseFailure(result, suite, c))
			}
		}
	}

	if len(failures) == 0 && !result.Success {
		message := strings.TrimSpace(result.Output)
		if result.Error != nil {
			message = strings.TrimSpace(message + "\n" + result.Error.Error())
		}
		failures = append(failures, domain.TestFailure{
			TestName:   result.Name,
			Target:     result.Name,
			ResultFile: result.ResultFile,
			Message:    message,
		})
	}

	return failures
}

func (p *GTestParser) caseFailure(result domain.TestResult, suite Suite, c Case) domain.TestFailure {
	f := domain.TestFailure{
		TestName:   suite.Name + "." + c.Name,
		Target:     result.Name,
		ResultFile: result.ResultFile,
	}

	var messages []string
	for _, failure := range c.Failures {
		text := failure.Body
		if strings.TrimSpace(text) == "" {
			text = failure.Message
		}
		file, line, rest := splitLocation(text)
		if f.File == "" && file != "" {
			f.File, f.Line = file, line
		}
		messages = append(messages, strings.TrimSpace(rest))
	}
	f.Message = strings.Join(messages, "\n\n")
	return f
}

// splitLocation separates a leading "file:line" line from the message
func splitLocation(text string) (file string, line int, rest string) {
	text = strings.TrimLeft(text, "\n")
	first, remainder, _ := strings.Cut(text, "\n")
	m := locationPattern.FindStringSubmatch(first)
	if m == nil {
		return "", 0, text
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, text
	}
	return m[1], n, remainder
}
