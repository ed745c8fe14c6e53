package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{
			name:   "serialization failure",
			err:    &pgconn.PgError{Code: "40001", TableName: "invoices"},
			code:   apperror.CodePersistenceConflict,
			status: http.StatusConflict,
		},
		{
			name:   "deadlock",
			err:    fmt.Errorf("update quote: %w", &pgconn.PgError{Code: "40P01"}),
			code:   apperror.CodePersistenceConflict,
			status: http.StatusConflict,
		},
		{
			name:   "lock not available",
			err:    &pgconn.PgError{Code: "55P03"},
			code:   apperror.CodePersistenceConflict,
			status: http.StatusConflict,
		},
		{
			name:   "duplicate email",
			err:    &pgconn.PgError{Code: "23505", ConstraintName: "clients_email_key"},
			code:   apperror.CodeConflictingUniqueField,
			status: http.StatusConflict,
		},
		{
			name:   "unknown client",
			err:    &pgconn.PgError{Code: "23503", ConstraintName: "invoices_client_id_fkey"},
			code:   apperror.CodeNotFound,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)

			appErr, ok := apperror.AsAppError(mapped)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMapError_UniqueDetails(t *testing.T) {
	err := MapError(&pgconn.PgError{Code: "23505", ConstraintName: "invoices_number_key"})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "invoice", appErr.Details["entity"])
	assert.Equal(t, "number", appErr.Details["field"])
	assert.Equal(t, "invoices_number_key", appErr.Details["constraint"])
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, MapError(nil))

	plain := errors.New("connection refused")
	assert.Same(t, plain, MapError(plain))

	notFound := apperror.NewNotFound("quote", "1")
	assert.Same(t, notFound, MapError(notFound))

	other := &pgconn.PgError{Code: "42P01"}
	assert.Equal(t, other, MapError(other))
}

func TestMapError_RetryableOnlyForConflicts(t *testing.T) {
	assert.True(t, apperror.IsRetryable(MapError(&pgconn.PgError{Code: "40001"})))
	assert.False(t, apperror.IsRetryable(MapError(&pgconn.PgError{Code: "23505"})))
}
