package memory

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/domain/audit"
)

// AuditLog implements audit.Recorder on the store.
type AuditLog struct {
	store *Store
}

var _ audit.Recorder = (*AuditLog)(nil)

// Record appends an entry in the caller's transaction.
func (l *AuditLog) Record(ctx context.Context, entry audit.Entry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	return l.store.view(ctx, func(st *state) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

// History returns the entries of one entity, newest first.
func (l *AuditLog) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	var out []audit.Entry
	err := l.store.view(ctx, func(st *state) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			if e.EntityType != entityType || e.EntityID != entityID {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
