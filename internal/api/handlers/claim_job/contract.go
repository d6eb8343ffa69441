package claim_job

import (
	"context"

	claimJob "github.com/freshnest-app/booking-core/internal/usecase/claim_job"
)

type ClaimJobUseCase interface {
	Execute(ctx context.Context, req *claimJob.Request) (*claimJob.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
