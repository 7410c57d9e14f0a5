package service_interfaces

import (
	"context"
	"io"

	"github.com/api-sage/client-ledger-processor/src/internal/domain"
)

type LedgerService interface {
	ProcessFile(ctx context.Context, inputPath string, outputPath string) (domain.RunReport, error)
	Process(ctx context.Context, in io.Reader, out io.Writer) (domain.RunReport, error)
}
