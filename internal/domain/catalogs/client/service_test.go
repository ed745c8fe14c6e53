package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/catalogs/client"
	"factura/internal/infrastructure/storage/memory"
)

func strp(s string) *string { return &s }

func newService() *client.Service {
	store := memory.NewStore()
	return client.NewService(store.Clients(), store, store.Audit())
}

func TestCreate_Normalizes(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	c := client.NewClient("  ACME Corp ")
	c.Email = strp(" Billing@ACME.test ")
	c.VATNumber = strp("fr 12 345678901")
	c.Phone = strp("   ")
	require.NoError(t, svc.Create(ctx, c))

	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME Corp", got.DisplayName)
	assert.Equal(t, "billing@acme.test", *got.Email)
	assert.Equal(t, "FR12345678901", *got.VATNumber)
	assert.Nil(t, got.Phone)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	err := svc.Create(ctx, client.NewClient("   "))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	bad := client.NewClient("Bad")
	bad.Email = strp("not-an-email")
	err = svc.Create(ctx, bad)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain", "billing@acme.test", false},
		{"plus tag", "ops+invoices@example.com", false},
		{"no at", "billing.acme.test", true},
		{"no domain", "billing@", true},
		{"two ats", "a@b@example.com", true},
		{"spaces inside", "bill ing@acme.test", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := client.NewClient("ACME")
			c.Email = strp(tt.email)
			c.Normalize()

			err := c.Validate(context.Background())
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, "email", appErr.Details["field"])
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a := client.NewClient("A")
	a.Email = strp("ops@example.com")
	require.NoError(t, svc.Create(ctx, a))

	b := client.NewClient("B")
	b.Email = strp("OPS@example.com")
	err := svc.Create(ctx, b)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflictingUniqueField, appErr.Code)
	assert.Equal(t, "email", appErr.Details["field"])
}

func TestEnsure_ReturnsExisting(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first := client.NewClient("ACME")
	first.Email = strp("billing@acme.test")
	got, created, err := svc.Ensure(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := client.NewClient("ACME again")
	second.Email = strp("billing@acme.test")
	again, created, err := svc.Ensure(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, got.ID, again.ID)
}

func TestList_NewestFirstAndSearch(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		require.NoError(t, svc.Create(ctx, client.NewClient(name)))
	}

	list, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, "Gamma", list.Items[0].DisplayName)

	list, err = svc.List(ctx, domain.ListFilter{Search: "bet"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Beta", list.Items[0].DisplayName)

	_, err = svc.GetByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}
