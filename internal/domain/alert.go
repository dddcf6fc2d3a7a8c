package domain

import (
	"errors"
	"time"
)

// ErrAlertsDenied is returned by an AlertSink when the delivery channel has
// refused permission. Scheduling a batch is then skipped entirely; the
// caller must not fall back to a partial schedule.
var ErrAlertsDenied = errors.New("alert delivery permission denied")

// AlertKind classifies an installment reminder by its due-date relation to now
type AlertKind string

const (
	AlertKindUpcoming AlertKind = "upcoming"
	AlertKindDueToday AlertKind = "due_today"
	AlertKindOverdue  AlertKind = "overdue"
)

// Alert is one scheduled installment reminder. There is at most one alert
// per loan, for its earliest pending installment.
type Alert struct {
	ID        int64     `json:"id"`
	CompanyID int32     `json:"companyId"`
	LoanID    int64     `json:"loanId"`
	EMINumber int32     `json:"emiNumber"`
	Kind      AlertKind `json:"kind"`
	TriggerAt time.Time `json:"triggerAt"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// AlertSink is the delivery seam for scheduled reminders. ReplaceBatch
// cancels everything previously scheduled for the company and installs the
// new batch in one step, so repeated scheduling runs never accumulate
// stale or duplicate alerts.
type AlertSink interface {
	ReplaceBatch(companyID int32, alerts []*Alert) error
	GetScheduled(companyID int32) ([]*Alert, error)
}
