package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"fwtest/internal/domain"
)

const (
	runsTable     = "fwtest_runs"
	failuresTable = "fwtest_failures"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		recorded_at VARCHAR(32) NOT NULL,
		targets TEXT NOT NULL,
		total_tests INT NOT NULL,
		passed_tests INT NOT NULL,
		failed_tests INT NOT NULL,
		passed_cases INT NOT NULL,
		failed_cases INT NOT NULL,
		memcheck BOOLEAN NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		workers INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + failuresTable + ` (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id BIGINT NOT NULL,
		test_name VARCHAR(255) NOT NULL,
		target VARCHAR(255) NOT NULL,
		file VARCHAR(1024) NOT NULL,
		line INT NOT NULL,
		message TEXT NOT NULL,
		INDEX (run_id)
	)`,
}

// MySQLSink records run history in a MySQL database
type MySQLSink struct {
	dsn string
}

// NewMySQLSink validates dsn and returns a sink for it. The connection is
// opened per Record call.
func NewMySQLSink(dsn string) (*MySQLSink, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("invalid mysql dsn: no database name")
	}
	return &MySQLSink{dsn: cfg.FormatDSN()}, nil
}

// Record inserts one run row and a row per failure in a single transaction
func (s *MySQLSink) Record(ctx context.Context, output *domain.TestResultsOutput) error {
	db, err := sql.Open("mysql", s.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	meta := output.Meta
	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+runsTable+` (recorded_at, targets, total_tests, passed_tests, failed_tests, passed_cases, failed_cases, memcheck, duration_seconds, workers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.Timestamp, strings.Join(meta.Targets, " "), meta.TotalTests, meta.PassedTests, meta.FailedTests,
		meta.PassedTestCases, meta.FailedTestCases, meta.Memcheck, meta.DurationSeconds, meta.Workers,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, f := range output.Details {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+failuresTable+` (run_id, test_name, target, file, line, message) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.TestName, f.Target, f.File, f.Line, f.Message,
		); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.TestName, err)
		}
	}

	return tx.Commit()
}

var _ Sink = (*MySQLSink)(nil)
