package catalog

import (
	"context"
	"errors"

	"github.com/spigell/program-matcher/internal/programs"
)

var (
	ErrProfileNotFound = errors.New("company profile not found")
	ErrProgramNotFound = errors.New("program not found")
)

// Source provides company profiles and the program catalog.
// Programs returns a collection owned by the caller: filters may shrink it in place.
type Source interface {
	Profile(ctx context.Context, userID string) (*programs.CompanyProfile, error)
	Programs(ctx context.Context) (*programs.Programs, error)
	Program(ctx context.Context, id string) (*programs.Program, error)
}
