package pde

import (
	"errors"
	"fmt"

	"github.com/san-kum/brusselator/internal/grid"
)

// ErrUnstable indicates the integration produced non-finite field values.
var ErrUnstable = errors.New("pde: non-finite field values (NaN or Inf detected)")

// InstabilityError carries blow-up diagnostics for the first snapshot that
// failed validation.
type InstabilityError struct {
	Time   float64
	UStats grid.Stats
	VStats grid.Stats
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%v at t=%.2f", ErrUnstable, e.Time)
}

func (e *InstabilityError) Unwrap() error {
	return ErrUnstable
}
