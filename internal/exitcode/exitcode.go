// Package exitcode maps mdp's sentinel errors onto the CLI's exit-code
// taxonomy: 0 success, 1 generic failure, 2 model unreachable, 3 structural
// validation failed, 4 detector plan parse failure.
package exitcode

import (
	"errors"

	"github.com/mdproof/mdp/internal/mdperrors"
)

const (
	OK                    = 0
	GenericFailure        = 1
	ModelUnreachable      = 2
	StructuralCheckFailed = 3
	PlanParseFailed       = 4
)

// For maps err to the exit code the CLI should return for it.
func For(err error) int {
	if err == nil {
		return OK
	}
	switch {
	case errors.Is(err, mdperrors.ErrModelUnreachable):
		return ModelUnreachable
	case errors.Is(err, mdperrors.ErrPlanParse):
		return PlanParseFailed
	case errors.Is(err, mdperrors.ErrMaskParity),
		errors.Is(err, mdperrors.ErrStructuralCheck),
		errors.Is(err, mdperrors.ErrHazardRemaining):
		return StructuralCheckFailed
	default:
		return GenericFailure
	}
}
