package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fwtest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	results := []domain.TestResult{
		{Name: "PatchTest", Success: true, Passed: 5},
		{Name: "ConcertTest", Success: false, Passed: 2, Failed: 1, Error: errors.New("exit status 1")},
	}
	failures := []domain.TestFailure{{TestName: "ConcertTest.ListensToMidi", Target: "ConcertTest"}}

	out := Summarize(results, failures, RunInfo{Targets: []string{"all"}, Workers: 4, Duration: 1500 * time.Millisecond})

	assert.Equal(t, 2, out.Meta.TotalTests)
	assert.Equal(t, 1, out.Meta.PassedTests)
	assert.Equal(t, 1, out.Meta.FailedTests)
	assert.Equal(t, 7, out.Meta.PassedTestCases)
	assert.Equal(t, 1, out.Meta.FailedTestCases)
	assert.Equal(t, 1.5, out.Meta.DurationSeconds)
	assert.Equal(t, []string{"all"}, out.Meta.Targets)
	assert.Len(t, out.Details, 1)

	empty := Summarize(nil, nil, RunInfo{})
	assert.NotNil(t, empty.Details)
	assert.NotNil(t, empty.Meta.Targets)
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build", "test", "test-results.json")
	st := NewJSONStorage(path)

	_, err := st.Load()
	assert.Error(t, err, "nothing saved yet")

	out := Summarize(
		[]domain.TestResult{{Name: "PatchTest", Success: false, Failed: 1}},
		[]domain.TestFailure{{TestName: "PatchTest.ConvertFromJson", File: "PatchTest.cpp", Line: 88}},
		RunInfo{Targets: []string{"memcheck"}, Memcheck: true, Workers: 2},
	)
	require.NoError(t, st.Save(out))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, out.Meta, loaded.Meta)
	assert.Equal(t, out.Details, loaded.Details)

	loaded.Details[0].Resolved = true
	require.NoError(t, st.Save(loaded))

	again, err := st.Load()
	require.NoError(t, err)
	assert.True(t, again.Details[0].Resolved)
}

func TestNewMySQLSink(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		wantErr bool
	}{
		{"valid", "ci:secret@tcp(127.0.0.1:3306)/firmware_tests", false},
		{"no database", "ci:secret@tcp(127.0.0.1:3306)/", true},
		{"malformed", "ci:secret@tcp(127.0.0.1:3306", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewMySQLSink(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, sink.dsn, "/firmware_tests")
		})
	}
}
