package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"factura/internal/core/apperror"
)

// SQLSTATE codes the driver reacts to.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
)

type uniqueField struct {
	entity string
	field  string
}

// Constraint names come from the migrations.
var uniqueConstraints = map[string]uniqueField{
	"clients_email_key":   {entity: "client", field: "email"},
	"quotes_number_key":   {entity: "quote", field: "number"},
	"invoices_number_key": {entity: "invoice", field: "number"},
}

var foreignKeyEntities = map[string]string{
	"quotes_client_id_fkey":          "client",
	"invoices_client_id_fkey":        "client",
	"quotes_invoice_id_fkey":         "invoice",
	"quote_lines_document_id_fkey":   "quote",
	"invoice_lines_document_id_fkey": "invoice",
}

// MapError translates PostgreSQL errors into application errors.
// Application errors and unrecognised errors pass through unchanged.
func MapError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return apperror.NewPersistenceConflict(pgErr.TableName, nil).
			WithDetail("sqlstate", pgErr.Code).
			WithCause(err)

	case sqlStateUniqueViolation:
		uf, ok := uniqueConstraints[pgErr.ConstraintName]
		if !ok {
			uf = uniqueField{entity: pgErr.TableName, field: pgErr.ColumnName}
		}
		return apperror.NewConflictingUniqueField(uf.entity, uf.field, nil).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)

	case sqlStateForeignKeyViolation:
		entity, ok := foreignKeyEntities[pgErr.ConstraintName]
		if !ok {
			entity = "record"
		}
		return apperror.NewNotFound(entity, nil).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}

	return err
}
