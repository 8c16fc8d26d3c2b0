package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"fwtest/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a Formatter writing to stdout
func NewFormatter() *Formatter {
	return NewFormatterTo(os.Stdout)
}

// NewFormatterTo creates a Formatter writing to w
func NewFormatterTo(w io.Writer) *Formatter {
	return &Formatter{out: w}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// PrintMetaStats displays the statistics of a finished run
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	const sep = "├─────────────────────────────────┼─────────────────────────────┤"
	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Targets", strings.Join(meta.Targets, " "), white},
		{"Test Programs", fmt.Sprint(meta.TotalTests), white},
		{"Passed Programs", fmt.Sprint(meta.PassedTests), green},
		{"Failed Programs", fmt.Sprint(meta.FailedTests), red},
		{"Passed Test Cases", fmt.Sprint(meta.PassedTestCases), green},
		{"Failed Test Cases", fmt.Sprint(meta.FailedTestCases), red},
		{"Memcheck", fmt.Sprint(meta.Memcheck), white},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		if i > 0 {
			fmt.Fprintln(f.out, sep)
		}
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	if meta.FailedTests == 0 {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d test program(s) failed with %d test case failure(s)\n", meta.FailedTests, meta.FailedTestCases)
	fmt.Fprintln(f.out)
	f.printFailureTree(output.Details)
}

// printFailureTree prints failed cases grouped by test target
func (f *Formatter) printFailureTree(failures []domain.TestFailure) {
	byTarget := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		byTarget[failure.Target] = append(byTarget[failure.Target], failure)
	}

	keys := make([]string, 0, len(byTarget))
	for k := range byTarget {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, target := range keys {
		lastTarget := i == len(keys)-1
		branch, indent := "├── ", "│   "
		if lastTarget {
			branch, indent = "└── ", "    "
		}
		yellow.Fprintf(f.out, "%s%s\n", branch, target)

		cases := byTarget[target]
		for j, failure := range cases {
			leaf := "├── "
			if j == len(cases)-1 {
				leaf = "└── "
			}
			location := ""
			if failure.File != "" {
				location = fmt.Sprintf(" (%s:%d)", failure.File, failure.Line)
			}
			red.Fprintf(f.out, "%s%s%s%s\n", indent, leaf, failure.TestName, location)
		}
	}
}

// PrintTargets lists generated test targets and aliases. cases maps a
// test name to its listed test cases and may be nil.
func (f *Formatter) PrintTargets(tests []domain.TestTarget, aliases []string, cases map[string][]string) {
	green.Fprintf(f.out, "Found %d test target(s):\n\n", len(tests))
	fmt.Fprint(f.out, renderTargetTable(tests, cases))

	fmt.Fprintln(f.out)
	cyan.Fprintf(f.out, "Aliases: %s\n", strings.Join(aliases, ", "))
}

func renderTargetTable(tests []domain.TestTarget, cases map[string][]string) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	header := []string{"Target", "Program", "Result"}
	if cases != nil {
		header = append(header, "Cases")
	}
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	totalCases := 0
	for _, test := range tests {
		row := []string{test.Name, test.Program, test.ResultFile}
		if cases != nil {
			listed, ok := cases[test.Name]
			if ok {
				row = append(row, fmt.Sprintf("%d", len(listed)))
				totalCases += len(listed)
			} else {
				row = append(row, "-")
			}
		}
		table.Append(row)
	}

	if cases != nil {
		table.SetFooter([]string{fmt.Sprintf("Total %d", len(tests)), "", "", fmt.Sprintf("%d", totalCases)})
	}

	table.Render()
	return tableBuffer.String()
}

// PrintCases prints the listed cases of each target as a tree
func (f *Formatter) PrintCases(tests []domain.TestTarget, cases map[string][]string) {
	for i, test := range tests {
		listed := cases[test.Name]
		lastTest := i == len(tests)-1
		branch, indent := "├── ", "│   "
		if lastTest {
			branch, indent = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s\n", branch, test.Name)

		if len(listed) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(not built or no test cases)"))
			continue
		}
		for j, c := range listed {
			leaf := "├── "
			if j == len(listed)-1 {
				leaf = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, leaf, yellow.Sprint(c))
		}
	}
}

// PrintBuildResults prints one line per executed node
func (f *Formatter) PrintBuildResults(results []domain.BuildResult) {
	for _, r := range results {
		switch r.Status {
		case domain.StatusDryRun:
			fmt.Fprintln(f.out, r.Command)
		case domain.StatusUpToDate:
			white.Fprintf(f.out, "%s is up to date.\n", r.Target)
		case domain.StatusFailed:
			red.Fprintf(f.out, "✗ %s: %v\n", r.Target, r.Error)
			if out := strings.TrimSpace(r.Output); out != "" && !r.IsTest {
				fmt.Fprintln(f.out, out)
			}
		case domain.StatusSkipped:
			yellow.Fprintf(f.out, "- %s skipped: %v\n", r.Target, r.Error)
		}
	}
}
