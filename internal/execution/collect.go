package execution

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fwtest/internal/domain"
	"fwtest/internal/parser"
)

// CollectFailures parses the failures of every unsuccessful test, up to
// limit result files at a time. Tests that never ran get one failure
// carrying the reason they were skipped.
func CollectFailures(ctx context.Context, tests []domain.TestResult, p parser.Parser, limit int) ([]domain.TestFailure, error) {
	perTest := make([][]domain.TestFailure, len(tests))

	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for i, tr := range tests {
		if tr.Success {
			continue
		}
		i, tr := i, tr
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if !tr.Ran {
				message := "not run"
				if tr.Error != nil {
					message = tr.Error.Error()
				}
				perTest[i] = []domain.TestFailure{{TestName: tr.Name, Target: tr.Name, Message: message}}
				return nil
			}
			perTest[i] = p.ParseFailure(tr)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var failures []domain.TestFailure
	for _, f := range perTest {
		failures = append(failures, f...)
	}
	return failures, nil
}
