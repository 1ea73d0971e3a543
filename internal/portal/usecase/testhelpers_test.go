package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"consultancy-portal/internal/portal/adapter/persistence/memory"
	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"
)

// MockLogger discards everything.
type MockLogger struct{}

func (m *MockLogger) Debug(args ...interface{})                 {}
func (m *MockLogger) Info(args ...interface{})                  {}
func (m *MockLogger) Warn(args ...interface{})                  {}
func (m *MockLogger) Error(args ...interface{})                 {}
func (m *MockLogger) Fatal(args ...interface{})                 {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return m
}
func (m *MockLogger) WithContext(ctx context.Context) logger.Logger {
	return m
}
func (m *MockLogger) WithComponent(component string) logger.Logger {
	return m
}

var testStart = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func tickingClock() func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return testStart.Add(time.Duration(n) * time.Minute)
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%03d", prefix, n)
	}
}

func newMemoryStore(opts ...memory.Option) *memory.DocumentStore {
	base := []memory.Option{memory.WithClock(tickingClock()), memory.WithIDGenerator(sequentialIDs("doc-"))}
	return memory.NewDocumentStore(append(base, opts...)...)
}

// seedLeads inserts n leads with increasing createdAt and returns their IDs oldest first.
func seedLeads(store repository.DocumentStore, n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		lead := model.Lead{
			StudentID:  fmt.Sprintf("student-%02d", i),
			TargetType: model.TargetCollege,
			TargetID:   "college-x",
			TargetName: "College X",
		}
		id, err := store.Insert(context.Background(), model.ListingLeads, lead.Fields())
		if err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

func recordIDs(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

// failingStore wraps a DocumentStore and fails selected operations.
type failingStore struct {
	repository.DocumentStore
	failQuery  error
	failInsert error
	failCount  error
}

func (f *failingStore) Query(ctx context.Context, q model.Query) ([]model.Record, error) {
	if f.failQuery != nil {
		return nil, f.failQuery
	}
	return f.DocumentStore.Query(ctx, q)
}

func (f *failingStore) Insert(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if f.failInsert != nil {
		return "", f.failInsert
	}
	return f.DocumentStore.Insert(ctx, collection, fields)
}

func (f *failingStore) Count(ctx context.Context, collection string, filters []model.Filter) (int64, error) {
	if f.failCount != nil {
		return 0, f.failCount
	}
	return f.DocumentStore.Count(ctx, collection, filters)
}

// uniqueLeadStore rejects a second lead for the same (studentId, target) like the
// partial unique indexes of the Mongo store.
type uniqueLeadStore struct {
	repository.DocumentStore
	mu   sync.Mutex
	seen map[string]bool
}

func newUniqueLeadStore(inner repository.DocumentStore) *uniqueLeadStore {
	return &uniqueLeadStore{DocumentStore: inner, seen: map[string]bool{}}
}

func (u *uniqueLeadStore) Insert(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if collection == model.ListingLeads {
		key := fmt.Sprintf("%v|%v|%v", fields[model.LeadStudentID], fields["collegeId"], fields["universityId"])
		u.mu.Lock()
		if u.seen[key] {
			u.mu.Unlock()
			return "", fmt.Errorf("insert lead: %w", errors.ErrConflict)
		}
		u.seen[key] = true
		u.mu.Unlock()
	}
	return u.DocumentStore.Insert(ctx, collection, fields)
}

// barrierStore holds every leads lookup until `parties` lookups have arrived,
// forcing racing RecordInterest calls to all miss each other's insert.
type barrierStore struct {
	repository.DocumentStore
	release chan struct{}
	parties int
	once    sync.Once
	count   int
	mu      sync.Mutex
}

func newBarrierStore(inner repository.DocumentStore, parties int) *barrierStore {
	return &barrierStore{DocumentStore: inner, release: make(chan struct{}), parties: parties}
}

func (b *barrierStore) Query(ctx context.Context, q model.Query) ([]model.Record, error) {
	recs, err := b.DocumentStore.Query(ctx, q)
	if q.Collection != model.ListingLeads {
		return recs, err
	}
	b.mu.Lock()
	b.count++
	if b.count >= b.parties {
		b.once.Do(func() { close(b.release) })
	}
	b.mu.Unlock()

	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return recs, err
}

// recordingNotifier captures notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (r *recordingNotifier) Notify(ctx context.Context, cfg model.EmailSettings, subject, body, replyTo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return r.err
}

func (r *recordingNotifier) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.subjects...)
}

// failingCursorStore fails every call.
type failingCursorStore struct{}

func (failingCursorStore) Load(ctx context.Context, sessionID, listing string) (*model.CursorChain, error) {
	return nil, fmt.Errorf("redis down")
}
func (failingCursorStore) Save(ctx context.Context, chain *model.CursorChain) error {
	return fmt.Errorf("redis down")
}
func (failingCursorStore) Clear(ctx context.Context, sessionID, listing string) error {
	return fmt.Errorf("redis down")
}
