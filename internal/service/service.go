// Package service implements the use-cases of the API on top of the
// repository layer and the recurrence engine.
package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// wrapStore marks a repository failure as a store outage. Failures are
// never collapsed into an empty result set: the fallback policy needs to
// tell "nothing scheduled" apart from "could not read the schedule".
func wrapStore(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}
