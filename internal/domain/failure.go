package domain

// TestFailure represents a failed test case
type TestFailure struct {
	TestName   string `json:"test_name"`   // Suite.Case
	Target     string `json:"target"`      // Test target the case belongs to
	ResultFile string `json:"result_file"` // XML file the failure was read from
	File       string `json:"file"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Resolved   bool   `json:"resolved,omitempty"` // Track if test case is marked as resolved
}
