package parser

import (
	"bufio"
	"strings"
)

// ParseTestList reads the output of --gtest_list_tests into "Suite.Case"
// names in listed order. Parameter comments after '#' are dropped.
func ParseTestList(output string) []string {
	var cases []string
	suite := ""

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !strings.HasPrefix(line, " ") {
			// googletest prints banners before the listing in some builds
			if !strings.HasSuffix(trimmed, ".") {
				suite = ""
				continue
			}
			suite = strings.TrimSuffix(trimmed, ".")
			continue
		}
		if suite != "" {
			cases = append(cases, suite+"."+trimmed)
		}
	}
	return cases
}
