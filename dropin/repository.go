package dropin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

var ErrNotFound = fmt.Errorf("not found")
var ErrConflict = fmt.Errorf("conflict")

// SettlementRecord is the journal row written once per settled request.
// Code is empty for successful settlements.
type SettlementRecord struct {
	RequestID string
	Code      string
	Message   string
	TokenType string
	CreatedAt time.Time
}

// NewSettlementRecord summarizes a settlement for the journal. Token values
// are never journaled, only the token type label.
func NewSettlementRecord(requestID uuid.UUID, s Settlement) *SettlementRecord {
	rec := &SettlementRecord{
		RequestID: requestID.String(),
		CreatedAt: time.Now().UTC(),
	}
	if s.Err != nil {
		var derr *Error
		if errors.As(s.Err, &derr) {
			rec.Code = derr.Code
			rec.Message = derr.Message
		} else {
			rec.Code = "InternalError"
			rec.Message = s.Err.Error()
		}
		return rec
	}
	rec.TokenType = s.Payment.Type
	return rec
}

// Repository is the settlement journal. Backed by Postgres when constructed
// with NewPGRepository, otherwise in-memory.
type Repository struct {
	mu      sync.RWMutex
	records []*SettlementRecord
	index   map[string]struct{}

	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{
		records: make([]*SettlementRecord, 0),
		index:   make(map[string]struct{}),
	}
}

// NewPGRepository constructs a db-backed journal.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RecordSettlement appends one journal row. A request id can be journaled
// at most once; a second write for the same id returns ErrConflict.
func (r *Repository) RecordSettlement(ctx context.Context, rec *SettlementRecord) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.index[rec.RequestID]; ok {
			return fmt.Errorf("settlement already journaled: %w", ErrConflict)
		}
		r.records = append(r.records, rec)
		r.index[rec.RequestID] = struct{}{}
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO dropin.settlements(request_id, code, message, token_type, created_at)
        VALUES ($1,$2,$3,$4,$5)
    `, rec.RequestID, rec.Code, rec.Message, rec.TokenType, rec.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetSettlement returns the journal row for a request id.
func (r *Repository) GetSettlement(ctx context.Context, requestID string) (*SettlementRecord, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		for _, rec := range r.records {
			if rec.RequestID == requestID {
				return rec, nil
			}
		}
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT request_id, code, message, token_type, created_at FROM dropin.settlements WHERE request_id=$1`, requestID)
	rec := &SettlementRecord{}
	if err := row.Scan(&rec.RequestID, &rec.Code, &rec.Message, &rec.TokenType, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListSettlements returns journal rows, newest first, bounded by limit.
func (r *Repository) ListSettlements(ctx context.Context, limit int) ([]*SettlementRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		out := make([]*SettlementRecord, 0, limit)
		for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, r.records[i])
		}
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT request_id, code, message, token_type, created_at FROM dropin.settlements ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*SettlementRecord
	for rows.Next() {
		rec := &SettlementRecord{}
		if err := rows.Scan(&rec.RequestID, &rec.Code, &rec.Message, &rec.TokenType, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
