package service

import (
	"fmt"

	"github.com/okian/compliance/internal/adapters/repository"
)

// Lookup failures surfaced to the HTTP layer as 404. Both wrap
// repository.ErrNotFound.
var (
	ErrProjectNotFound   = fmt.Errorf("project: %w", repository.ErrNotFound)
	ErrExecutionNotFound = fmt.Errorf("execution: %w", repository.ErrNotFound)
)
