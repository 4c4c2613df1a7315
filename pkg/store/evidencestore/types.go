// Package evidencestore persists evidence records, the authoritative
// index of everything submitted.
package evidencestore

import (
	"context"
	"fmt"
	"io"
	"time"
)

// EvidenceStore describes the interface of an evidence record store.
type EvidenceStore interface {
	// Insert appends a new record and returns its assigned id.
	// The store assigns UploadedAt at insert time if it's unset.
	// Records are immutable once inserted.
	Insert(ctx context.Context, record *Record) (int64, error)
	// FindLatest returns the record for the (caseID, evidenceID) pair.
	// The pair is not unique, so ties are broken deterministically:
	// greatest upload date first, then greatest id.
	// Returns store.ErrNotFound if no record matches.
	FindLatest(ctx context.Context, caseID, evidenceID string) (*Record, error)
	// ListRecent returns up to limit records, most recently uploaded
	// first (same tie-break as FindLatest).
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	io.Closer
}

// Record describes one submitted file: its identity, metadata, and the
// digest computed when it was submitted.
type Record struct {
	ID         int64
	CaseID     string
	EvidenceID string
	FileName   string
	FileType   string
	Hash       string
	OfficerID  string
	UploadedAt time.Time
}

// Check provides some sanity checking on values in the Record struct.
func (r *Record) Check() error {
	if r.CaseID == "" {
		return fmt.Errorf("invalid caseId: %q", r.CaseID)
	}
	if r.EvidenceID == "" {
		return fmt.Errorf("invalid evidenceId: %q", r.EvidenceID)
	}
	if len(r.Hash) != 64 { // 64 hex characters = 256 bits
		return fmt.Errorf("invalid hash length: %v, must be 64", len(r.Hash))
	}
	return nil
}
