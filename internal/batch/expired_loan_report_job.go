package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"minibank/internal/domain/loan"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/clock"
)

// ExpiredLoanReportJob counts uncancelled loans whose expiry date has
// passed and publishes the figure as a gauge. The ledger never closes
// loans on its own, so the count only grows until an operator steps in.
type ExpiredLoanReportJob struct {
	loanRepo loan.Repository
	clk      clock.Clock
	logger   *slog.Logger
}

func NewExpiredLoanReportJob(loanRepo loan.Repository, clk clock.Clock, logger *slog.Logger) *ExpiredLoanReportJob {
	if loanRepo == nil || logger == nil {
		panic("ExpiredLoanReportJob dependencies cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &ExpiredLoanReportJob{
		loanRepo: loanRepo,
		clk:      clk,
		logger:   logger.With("job", "ExpiredLoanReport"),
	}
}

func (j *ExpiredLoanReportJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting expired loan report job.")

	now := j.clk.Now()
	count, err := j.loanRepo.CountActiveExpiredBefore(ctx, now)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count expired loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to count expired loans: %w", err)
	}

	monitoring.RecordExpiredActiveLoans(count)

	j.logger.InfoContext(ctx, "Expired loan report job finished.",
		slog.Int64("expired_active_loans", count),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
