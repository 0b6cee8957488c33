package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csh0601/snapgrade/internal/grading"
	"github.com/csh0601/snapgrade/internal/store"
)

// recordsKey is the single durable-storage key holding the entire
// JSON-encoded record sequence.
const recordsKey = "history_records"

const (
	defaultCapacity = 100
	defaultCacheTTL = 30 * time.Second
)

// cacheEntry is the last computed (records, stats) pair. Valid only
// within the TTL window; every write path drops it unconditionally.
type cacheEntry struct {
	records    []Record
	stats      Stats
	capturedAt time.Time
}

// Options configures a history Store.
type Options struct {
	// Capacity bounds retention; saving past it evicts the records
	// with the oldest timestamps. 0 means the default.
	Capacity int

	// CacheTTL is the read cache validity window. 0 means the default.
	CacheTTL time.Duration
}

// Store owns the persisted record sequence. The sequence is always
// read and written in full, so concurrent savers from independent
// flows must be sequenced by the caller: each write is a
// read-modify-write of the whole sequence and the last full write
// wins. The in-process cache is guarded for safe concurrent reads.
type Store struct {
	kv       *store.Store
	capacity int
	ttl      time.Duration

	// Injection points for tests.
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	cache *cacheEntry
}

// New creates a history Store over the durable key-value store.
func New(kv *store.Store, opts Options) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Store{
		kv:       kv,
		capacity: opts.Capacity,
		ttl:      opts.CacheTTL,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// SaveHistory persists one grading result: generates a fresh id and
// timestamp, recomputes the summary from the outcomes, prepends the
// record, evicts the oldest records beyond capacity, writes the full
// sequence back and invalidates the cache. The only write path that
// also returns the freshly created record.
func (s *Store) SaveHistory(ctx context.Context, imageRef string, result *grading.Result, taskID string) (*Record, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	if taskID == "" {
		taskID = result.TaskID
	}

	nowMs := s.now().UnixMilli()
	rec := Record{
		ID:          s.newID(),
		TaskID:      taskID,
		Timestamp:   nowMs,
		DisplayTime: formatDisplayTime(nowMs),
		ImageRef:    imageRef,
		Result:      *result,
		WrongPoints: wrongPointsOf(*result),
	}
	// The summary is always recomputed at save time so records from
	// pre-normalization callers end up consistent too.
	rec.Result.Summary = grading.Summarize(result.Outcomes)

	records = append([]Record{rec}, records...)
	records = evictOldest(records, s.capacity)

	if err := s.writeAll(ctx, records); err != nil {
		return nil, err
	}
	slog.Debug("history record saved", "id", rec.ID, "task", rec.TaskID)
	return &rec, nil
}

// GetHistory returns all records sorted by timestamp descending,
// served from the cache when it is inside its validity window.
// A cache miss triggers a full reload and repopulates both the record
// sequence and the derived statistics.
func (s *Store) GetHistory(ctx context.Context) ([]Record, error) {
	if cached := s.cachedRecords(); cached != nil {
		return cached, nil
	}

	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	s.mu.Lock()
	s.cache = &cacheEntry{
		records:    records,
		stats:      computeStats(records),
		capturedAt: s.now(),
	}
	s.mu.Unlock()

	return copyRecords(records), nil
}

// GetStatistics returns aggregate statistics, populating the cache
// when needed.
func (s *Store) GetStatistics(ctx context.Context) (Stats, error) {
	records, err := s.GetHistory(ctx)
	if err != nil {
		return Stats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		return s.cache.stats, nil
	}
	// A write landed between the read and this point and dropped the
	// cache; derive the stats from the records just returned.
	return computeStats(records), nil
}

// GetRecordByID returns the record with the given id, or nil.
func (s *Store) GetRecordByID(ctx context.Context, id string) (*Record, error) {
	records, err := s.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, nil
}

// DeleteRecord removes the record with the given id. Returns false
// when no such record existed; that is a no-op, not an error.
func (s *Store) DeleteRecord(ctx context.Context, id string) (bool, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return false, err
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}

	if err := s.writeAll(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAllHistory removes every record.
func (s *Store) ClearAllHistory(ctx context.Context) (bool, error) {
	if err := s.writeAll(ctx, []Record{}); err != nil {
		return false, err
	}
	return true, nil
}

// cachedRecords returns a copy of the cached sequence when the cache
// is still valid, nil otherwise.
func (s *Store) cachedRecords() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil || s.now().Sub(s.cache.capturedAt) >= s.ttl {
		return nil
	}
	return copyRecords(s.cache.records)
}

// invalidate drops the cache. Called by every write path.
func (s *Store) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// loadAll reads and decodes the full persisted sequence.
func (s *Store) loadAll(ctx context.Context) ([]Record, error) {
	raw, err := s.kv.Get(ctx, recordsKey)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if raw == nil {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}

// writeAll encodes and writes the full sequence, then invalidates the
// cache.
func (s *Store) writeAll(ctx context.Context, records []Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Put(ctx, recordsKey, raw); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	s.invalidate()
	return nil
}

// evictOldest trims the sequence to capacity, dropping the records
// with the oldest timestamps first.
func evictOldest(records []Record, capacity int) []Record {
	if len(records) <= capacity {
		return records
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	evicted := len(records) - capacity
	slog.Info("history capacity reached, evicting oldest records", "evicted", evicted)
	return records[:capacity]
}

func copyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
