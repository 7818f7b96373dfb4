package http

import (
	"context"
	"io"

	"bizreport/internal/operations"
	"bizreport/internal/services"
)

// CleaningService is what the clean handler needs from the service layer
type CleaningService interface {
	CleanReader(ctx context.Context, r io.Reader, kind services.InputKind, encoding, sheet string) (*operations.Result, error)
}
