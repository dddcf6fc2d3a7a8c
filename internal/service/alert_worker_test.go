package service

import (
	"context"
	"testing"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestAlertWorkerSyncsAllCompanies(t *testing.T) {
	loanRepo := testutil.NewMockLoanRepository()
	companyRepo := testutil.NewMockCompanyRepository()
	sink := testutil.NewMockAlertSink()
	scheduler := NewAlertScheduler(loanRepo, sink)

	for i := 0; i < 2; i++ {
		if _, err := companyRepo.Create(&domain.Company{Name: "Company"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	due := time.Now().AddDate(0, 0, 3)
	for companyID := int32(1); companyID <= 2; companyID++ {
		loan := alertTestLoan(0, domain.LoanStatusActive, due)
		loan.CompanyID = companyID
		loan.EMI = decimal.NewFromInt(1066)
		if _, err := loanRepo.Create(loan); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	worker := NewAlertWorker(scheduler, companyRepo, zerolog.Nop(), AlertWorkerConfig{Interval: time.Hour})
	worker.Start(context.Background())
	defer worker.Stop()

	// The worker runs one sync immediately on startup
	deadline := time.After(2 * time.Second)
	for sink.CallCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for initial sync, %d calls", sink.CallCount())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := len(sink.Batch(1)); got != 1 {
		t.Errorf("expected 1 alert for company 1, got %d", got)
	}
	if got := len(sink.Batch(2)); got != 1 {
		t.Errorf("expected 1 alert for company 2, got %d", got)
	}
}

func TestAlertWorkerStartStop(t *testing.T) {
	loanRepo := testutil.NewMockLoanRepository()
	companyRepo := testutil.NewMockCompanyRepository()
	sink := testutil.NewMockAlertSink()
	scheduler := NewAlertScheduler(loanRepo, sink)

	worker := NewAlertWorker(scheduler, companyRepo, zerolog.Nop(), AlertWorkerConfig{Interval: time.Hour})
	worker.Start(context.Background())

	// Second start is a no-op
	worker.Start(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop in time")
	}

	// Second stop must not block or panic
	worker.Stop()
}
