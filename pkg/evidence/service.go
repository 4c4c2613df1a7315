// Package evidence implements the custody rules on top of the blob and
// evidence record stores: submitting a file, verifying a file against
// its stored digest, and listing recent submissions.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/casevault/casevault/pkg/digest"
	"github.com/casevault/casevault/pkg/store"
	"github.com/casevault/casevault/pkg/store/blobstore"
	"github.com/casevault/casevault/pkg/store/evidencestore"
)

// ErrNoFile is returned when a submission or verification arrives
// without an uploaded file.
var ErrNoFile = errors.New("no file uploaded")

// listLimit caps how many records List returns.
const listLimit = 100

type Service struct {
	blobs   blobstore.BlobStore
	records evidencestore.EvidenceStore
}

func NewService(blobs blobstore.BlobStore, records evidencestore.EvidenceStore) *Service {
	return &Service{
		blobs:   blobs,
		records: records,
	}
}

// Upload is an uploaded file: its contents and the name the client
// gave it.
type Upload struct {
	Name     string
	Contents io.Reader
}

type SubmitRequest struct {
	CaseID     string
	EvidenceID string
	// FileName is the display name. Defaults to the name of the
	// uploaded file.
	FileName  string
	FileType  string
	OfficerID string
	File      *Upload
}

type SubmitResult struct {
	EvidenceID string
	Hash       string
}

// Submit stores the uploaded file, hashes the stored bytes, and
// records the evidence. The blob write and the record insert are two
// separate effects: if the insert fails, the blob stays behind without
// an index entry.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.File == nil {
		return nil, ErrNoFile
	}

	location, _, err := s.blobs.Put(ctx, req.File.Name, req.File.Contents)
	if err != nil {
		return nil, fmt.Errorf("unable to store evidence file: %w", err)
	}

	hash, err := s.hashBlob(ctx, location)
	if err != nil {
		return nil, err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = req.File.Name
	}

	record := &evidencestore.Record{
		CaseID:     req.CaseID,
		EvidenceID: req.EvidenceID,
		FileName:   fileName,
		FileType:   req.FileType,
		Hash:       hash,
		OfficerID:  req.OfficerID,
	}
	_, err = s.records.Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("unable to record evidence: %w", err)
	}

	return &SubmitResult{
		EvidenceID: req.EvidenceID,
		Hash:       hash,
	}, nil
}

type VerifyRequest struct {
	CaseID     string
	EvidenceID string
	File       *Upload
}

type VerifyResult struct {
	IsValid        bool
	StoredHash     string
	CalculatedHash string
	Record         *evidencestore.Record
}

// Verify hashes the presented file and compares it against the stored
// digest for the (caseID, evidenceID) pair. Returns store.ErrNotFound
// when no record exists for the pair; that's a regular verification
// outcome, not a system failure.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.File == nil {
		return nil, ErrNoFile
	}

	location, _, err := s.blobs.Put(ctx, req.File.Name, req.File.Contents)
	if err != nil {
		return nil, fmt.Errorf("unable to store verification file: %w", err)
	}

	calculated, err := s.hashBlob(ctx, location)
	if err != nil {
		return nil, err
	}

	// The verification upload was only needed for hashing. Cleanup is
	// best-effort: a stray blob doesn't change the verdict.
	err = s.blobs.Delete(ctx, location)
	if err != nil {
		log.WithError(err).WithField("location", location).Warn("unable to delete verification file")
	}

	record, err := s.records.FindLatest(ctx, req.CaseID, req.EvidenceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("unable to look up evidence record: %w", err)
	}

	return &VerifyResult{
		IsValid:        digest.Equal(calculated, record.Hash),
		StoredHash:     record.Hash,
		CalculatedHash: calculated,
		Record:         record,
	}, nil
}

// List returns the most recently submitted records, newest first,
// capped at 100.
func (s *Service) List(ctx context.Context) ([]evidencestore.Record, error) {
	records, err := s.records.ListRecent(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("unable to list evidence records: %w", err)
	}
	return records, nil
}

// hashBlob reads the blob back from the store and digests it, so the
// hash reflects exactly the bytes that were persisted.
func (s *Service) hashBlob(ctx context.Context, location string) (string, error) {
	r, _, err := s.blobs.Get(ctx, location)
	if err != nil {
		return "", fmt.Errorf("unable to read back stored file: %w", err)
	}
	defer r.Close()

	hash, err := digest.Sum(r)
	if err != nil {
		return "", fmt.Errorf("unable to hash stored file: %w", err)
	}
	return hash, nil
}
