package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/finance"
	"github.com/jls/financesuite/finance-backend/internal/util"
	"github.com/rs/zerolog/log"
)

// immediateDelay is the grace applied to alerts that must fire right away
// (due today past the morning window, or already overdue)
const immediateDelay = 5 * time.Second

// AlertScheduler maps each loan's next pending installment to at most one
// scheduled reminder and replaces the company's whole batch in the sink.
// Replace-all keeps repeated runs from accumulating stale alerts; volumes
// per company are small enough that diffing is not worth its bookkeeping.
type AlertScheduler struct {
	loanRepo domain.LoanRepository
	sink     domain.AlertSink
}

// NewAlertScheduler creates a new AlertScheduler
func NewAlertScheduler(loanRepo domain.LoanRepository, sink domain.AlertSink) *AlertScheduler {
	return &AlertScheduler{
		loanRepo: loanRepo,
		sink:     sink,
	}
}

// SyncCompany rebuilds and replaces the alert batch for one company.
// A permission denial from the sink skips the batch entirely and is not
// surfaced as an error; partial schedules are never written.
func (s *AlertScheduler) SyncCompany(companyID int32) error {
	loans, err := s.loanRepo.GetAllByCompany(companyID)
	if err != nil {
		return err
	}

	alerts := BuildAlerts(companyID, loans, time.Now())

	if err := s.sink.ReplaceBatch(companyID, alerts); err != nil {
		if errors.Is(err, domain.ErrAlertsDenied) {
			log.Debug().
				Int32("company_id", companyID).
				Msg("Alert delivery denied, skipping batch")
			return nil
		}
		return err
	}

	log.Debug().
		Int32("company_id", companyID).
		Int("alerts", len(alerts)).
		Msg("Alert batch replaced")
	return nil
}

// BuildAlerts computes the reminder batch for a set of loans. Only loans
// that are live with a pending installment produce an alert, one each, for
// the earliest pending installment.
func BuildAlerts(companyID int32, loans []*domain.Loan, now time.Time) []*domain.Alert {
	var alerts []*domain.Alert
	for _, loan := range loans {
		switch loan.EffectiveStatus(now) {
		case domain.LoanStatusActive, domain.LoanStatusDisbursed, domain.LoanStatusOverdue:
		default:
			continue
		}
		next := loan.NextPendingInstallment()
		if next == nil {
			continue
		}
		alerts = append(alerts, buildAlert(companyID, loan, next, now))
	}
	return alerts
}

// buildAlert classifies one installment's due date against now.
// Future due dates trigger at 09:00 local on the day; a due date of today
// keeps the 09:00 trigger only while it is still ahead; anything past is
// an overdue alert firing near-immediately.
func buildAlert(companyID int32, loan *domain.Loan, next *domain.Installment, now time.Time) *domain.Alert {
	alert := &domain.Alert{
		CompanyID: companyID,
		LoanID:    loan.ID,
		EMINumber: next.EMINumber,
	}
	amount := finance.FormatINR(next.Amount)

	switch {
	case next.DueDate.After(util.StartOfDay(now)) && !util.SameDay(now, next.DueDate):
		alert.Kind = domain.AlertKindUpcoming
		alert.TriggerAt = util.MorningOf(next.DueDate)
		alert.Title = "EMI Reminder"
		alert.Body = fmt.Sprintf("EMI %d of %s for loan #%d is due on %s",
			next.EMINumber, amount, loan.ID, next.DueDate.Format("02 Jan 2006"))

	case util.SameDay(now, next.DueDate):
		alert.Kind = domain.AlertKindDueToday
		alert.Title = "EMI Due Today"
		alert.Body = fmt.Sprintf("EMI %d of %s for loan #%d is due today",
			next.EMINumber, amount, loan.ID)
		morning := util.MorningOf(now)
		if now.Before(morning) {
			alert.TriggerAt = morning
		} else {
			// Morning window already missed, fire right away
			alert.TriggerAt = now.Add(immediateDelay)
		}

	default:
		alert.Kind = domain.AlertKindOverdue
		alert.TriggerAt = now.Add(immediateDelay)
		alert.Title = "EMI Overdue"
		alert.Body = fmt.Sprintf("EMI %d of %s for loan #%d was due on %s and is overdue",
			next.EMINumber, amount, loan.ID, next.DueDate.Format("02 Jan 2006"))
	}

	return alert
}
