// Package audit defines the audit trail written by document operations.
package audit

import (
	"context"
	"time"

	appctx "factura/internal/core/context"
	"factura/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionFinalize Action = "finalize"
	ActionStatus   Action = "status"
	ActionConvert  Action = "convert"
	ActionDelete   Action = "delete"
)

// Entity types used in the trail.
const (
	EntityQuote   = "quote"
	EntityInvoice = "invoice"
	EntityClient  = "client"
)

// Entry is a single audit record.
type Entry struct {
	ID         id.ID          `json:"id"`
	EntityType string         `json:"entityType"`
	EntityID   id.ID          `json:"entityId"`
	Action     Action         `json:"action"`
	Actor      string         `json:"actor"`
	Changes    map[string]any `json:"changes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Recorder persists audit entries.
//
// Record must be called inside the transaction of the audited change so
// that the entry commits or rolls back with it.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// NewEntry builds an entry stamped with the actor found in ctx.
func NewEntry(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) Entry {
	return Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      appctx.GetActor(ctx),
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) History(context.Context, string, id.ID, int) ([]Entry, error) { return nil, nil }

var _ Recorder = Nop{}
