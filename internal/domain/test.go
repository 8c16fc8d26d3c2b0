package domain

// TestObject is a precompiled object file holding one test case file
type TestObject struct {
	Path string // Path to the object file as supplied upstream
	Name string // Base filename without extension
}

// TestTarget ties a test object to the program and result file generated for it
type TestTarget struct {
	Name       string // Alias name, equal to the object's base name
	Object     string // Object file path
	Program    string // Linked test program path
	ResultFile string // googletest XML result path
}
