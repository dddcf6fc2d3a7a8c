package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     float64(10110),
		"amount": "12000.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeLoan, payload)
	after := time.Now()

	assert.Equal(t, "loan.created", evt.Type)
	assert.Equal(t, EntityTypeLoan, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before.UTC()) && !evt.Timestamp.After(after.UTC()))
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"id": float64(10110),
	}

	evt := NewEvent(EventTypeDisbursed, EntityTypeLoan, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "loan.disbursed", decoded["type"])
	assert.Equal(t, "loan", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestLoanEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":     float64(10110),
		"amount": "12000.00",
		"status": "Active",
	}

	t.Run("LoanCreated", func(t *testing.T) {
		evt := LoanCreated(payload)
		assert.Equal(t, "loan.created", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("LoanUpdated", func(t *testing.T) {
		evt := LoanUpdated(payload)
		assert.Equal(t, "loan.updated", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
	})

	t.Run("LoanDisbursed", func(t *testing.T) {
		evt := LoanDisbursed(payload)
		assert.Equal(t, "loan.disbursed", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
	})

	t.Run("LoanClosed", func(t *testing.T) {
		evt := LoanClosed(payload)
		assert.Equal(t, "loan.closed", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
	})

	t.Run("LoanDeleted", func(t *testing.T) {
		evt := LoanDeleted(payload)
		assert.Equal(t, "loan.deleted", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
	})
}

func TestInstallmentPaid(t *testing.T) {
	payload := map[string]interface{}{
		"loanId":    float64(10110),
		"emiNumber": float64(3),
	}

	evt := InstallmentPaid(payload)
	assert.Equal(t, "installment.paid", evt.Type)
	assert.Equal(t, EntityTypeInstallment, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
}

func TestDashboardRefreshed(t *testing.T) {
	evt := DashboardRefreshed()
	assert.Equal(t, "dashboard.refreshed", evt.Type)
	assert.Equal(t, EntityTypeDashboard, evt.Entity)
	assert.Nil(t, evt.Payload)
}
