package evidencestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/casevault/casevault/pkg/store"
)

// MemoryStore implements EvidenceStore
var _ EvidenceStore = &MemoryStore{}

type MemoryStore struct {
	records   []Record
	nextID    int64
	muRecords sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
	}
}

func (ms *MemoryStore) Close() error {
	return nil
}

func (ms *MemoryStore) Insert(ctx context.Context, record *Record) (int64, error) {
	err := record.Check()
	if err != nil {
		return 0, err
	}

	ms.muRecords.Lock()
	defer ms.muRecords.Unlock()

	record.ID = ms.nextID
	ms.nextID++
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}

	ms.records = append(ms.records, *record)
	return record.ID, nil
}

func (ms *MemoryStore) FindLatest(ctx context.Context, caseID, evidenceID string) (*Record, error) {
	ms.muRecords.Lock()
	defer ms.muRecords.Unlock()

	var latest *Record
	for i := range ms.records {
		r := &ms.records[i]
		if r.CaseID != caseID || r.EvidenceID != evidenceID {
			continue
		}
		if latest == nil || moreRecent(r, latest) {
			latest = r
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}

	record := *latest
	return &record, nil
}

func (ms *MemoryStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	ms.muRecords.Lock()
	records := make([]Record, len(ms.records))
	copy(records, ms.records)
	ms.muRecords.Unlock()

	sort.Slice(records, func(i, j int) bool {
		return moreRecent(&records[i], &records[j])
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// moreRecent reports whether a sorts before b: greater upload date
// first, ties broken by greater id.
func moreRecent(a, b *Record) bool {
	if !a.UploadedAt.Equal(b.UploadedAt) {
		return a.UploadedAt.After(b.UploadedAt)
	}
	return a.ID > b.ID
}
