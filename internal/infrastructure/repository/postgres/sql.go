package postgres

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"

	"github.com/powerdata-io/ingest/internal/usecase"
)

// markConstraint tags integrity-constraint failures (SQLSTATE class 23) so
// the loader can tell skippable duplicates from real faults.
func markConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && strings.HasPrefix(string(pqErr.Code), "23") {
		return errors.Mark(err, usecase.ErrConstraintViolation)
	}
	return err
}
