package store

import (
	"errors"

	"github.com/use-agent/stackscout/models"
)

// Multi fans each record out to every recorder in order. Every recorder is
// attempted even when an earlier one fails; the errors are joined.
type Multi []Recorder

func (m Multi) Append(rec models.ResultRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Append(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
