package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/domain/lifecycle"
)

func TestApplyStatus_TimestampsSetOnce(t *testing.T) {
	inv := NewInvoice(id.New(), "eur", nil, nil)
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	inv.ApplyStatus(lifecycle.InvoiceSent, nil, t1)
	inv.ApplyStatus(lifecycle.InvoiceSent, nil, t2)

	assert.Equal(t, lifecycle.InvoiceSent, inv.Status)
	assert.Equal(t, t1, *inv.SentAt)
	assert.Equal(t, "EUR", inv.Currency)
}

func TestApplyStatus_Reasons(t *testing.T) {
	reason := "wrong amount"
	inv := NewInvoice(id.New(), "", nil, nil)
	now := time.Now().UTC()

	inv.ApplyStatus(lifecycle.InvoiceRefused, &reason, now)
	assert.Equal(t, "wrong amount", *inv.StatusReason)
	assert.NotNil(t, inv.RefusedAt)

	// cancelling without a reason keeps the refusal reason
	inv.ApplyStatus(lifecycle.InvoiceCancelled, nil, now)
	assert.Equal(t, "wrong amount", *inv.StatusReason)

	other := "duplicate"
	inv.ApplyStatus(lifecycle.InvoiceCancelled, &other, now)
	assert.Equal(t, "duplicate", *inv.StatusReason)

	// refusing without a reason clears it
	inv2 := NewInvoice(id.New(), "", nil, nil)
	inv2.StatusReason = &reason
	inv2.ApplyStatus(lifecycle.InvoiceRefused, nil, now)
	assert.Nil(t, inv2.StatusReason)
}

func TestCanDelete(t *testing.T) {
	inv := NewInvoice(id.New(), "", nil, nil)
	assert.NoError(t, inv.CanDelete())

	inv.AssignNumber("2025-F00001", time.Now())
	err := inv.CanDelete()
	assert.True(t, apperror.HasCode(err, apperror.CodeInvoiceNotDeletable))

	sent := NewInvoice(id.New(), "", nil, nil)
	sent.Status = lifecycle.InvoiceSent
	assert.Error(t, sent.CanDelete())
}
