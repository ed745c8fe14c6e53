package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "factura/internal/core/context"
	"factura/internal/core/id"
	"factura/internal/domain/audit"
)

// CompressionAlgo specifies the compression applied to stored changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the change-set size above which entries are
// stored compressed.
const DefaultCompressThreshold = 4 * 1024

// auditRow is a sys_audit row.
type auditRow struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            audit.Action    `db:"action"`
	Actor             string          `db:"actor"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService implements audit.Recorder on sys_audit.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Recorder = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record writes the entry in the caller's transaction.
func (s *AuditService) Record(ctx context.Context, entry audit.Entry) error {
	row, err := s.encode(ctx, entry)
	if err != nil {
		return err
	}

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, actor,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		row.ID, row.EntityType, row.EntityID, row.Action, row.Actor,
		row.Changes, row.ChangesCompressed, row.CompressionAlgo, row.CreatedAt,
	)
	if err != nil {
		return MapError(fmt.Errorf("insert audit entry: %w", err))
	}
	return nil
}

// encode fills defaults and compresses large change sets.
func (s *AuditService) encode(ctx context.Context, entry audit.Entry) (auditRow, error) {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = appctx.GetActor(ctx)
	}

	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return auditRow{}, fmt.Errorf("marshal changes: %w", err)
	}

	row := auditRow{
		ID:              entry.ID,
		EntityType:      entry.EntityType,
		EntityID:        entry.EntityID,
		Action:          entry.Action,
		Actor:           entry.Actor,
		Changes:         changes,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.CreatedAt,
	}
	if len(changes) > s.compressThreshold {
		row.ChangesCompressed = s.encoder.EncodeAll(changes, nil)
		row.Changes = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row, nil
}

// decode restores an entry from its stored row.
func (s *AuditService) decode(row auditRow) (audit.Entry, error) {
	raw := row.Changes
	if row.CompressionAlgo == CompressionZstd && len(row.ChangesCompressed) > 0 {
		decompressed, err := s.decoder.DecodeAll(row.ChangesCompressed, nil)
		if err != nil {
			return audit.Entry{}, fmt.Errorf("decompress changes: %w", err)
		}
		raw = decompressed
	}

	entry := audit.Entry{
		ID:         row.ID,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Action:     row.Action,
		Actor:      row.Actor,
		CreatedAt:  row.CreatedAt,
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entry.Changes); err != nil {
			return audit.Entry{}, fmt.Errorf("unmarshal changes: %w", err)
		}
	}
	return entry, nil
}

// History returns the entries of one entity, newest first.
func (s *AuditService) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, actor,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, MapError(fmt.Errorf("query history: %w", err))
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var row auditRow
		if err := rows.Scan(
			&row.ID, &row.EntityType, &row.EntityID, &row.Action, &row.Actor,
			&row.Changes, &row.ChangesCompressed, &row.CompressionAlgo, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		entry, err := s.decode(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
