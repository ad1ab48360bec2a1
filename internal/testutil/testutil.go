package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"shoppinglist-api/internal/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WaitTimeout bounds every asynchronous wait in tests
const WaitTimeout = 2 * time.Second

// SetupTestDB creates an in-memory SQLite database with the documents table
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	// every connection of :memory: is its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&store.DocumentRecord{})
	require.NoError(t, err, "Failed to create documents table")

	return db
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	err = sqlDB.Close()
	require.NoError(t, err)
}

// Op names a FaultStore operation
type Op string

const (
	OpGet    Op = "get"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type fault struct {
	call   int // fail this call number; 0 fails every call
	err    error
	sticky bool
}

// FaultStore wraps a store and fails chosen calls. Subscriptions read the
// wrapped store directly and are never faulted.
type FaultStore struct {
	store.Store

	mu     sync.Mutex
	calls  map[Op]int
	faults map[Op]fault
}

// NewFaultStore wraps s
func NewFaultStore(s store.Store) *FaultStore {
	return &FaultStore{
		Store:  s,
		calls:  make(map[Op]int),
		faults: make(map[Op]fault),
	}
}

// FailOn makes the nth call (1-based, counted since creation) of op return err
func (f *FaultStore) FailOn(op Op, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = fault{call: n, err: err}
}

// FailFrom makes every call of op from the nth on return err
func (f *FaultStore) FailFrom(op Op, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = fault{call: n, err: err, sticky: true}
}

// FailAlways makes every call of op return err
func (f *FaultStore) FailAlways(op Op, err error) {
	f.FailFrom(op, 1, err)
}

// Heal removes the fault configured for op
func (f *FaultStore) Heal(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, op)
}

// Calls returns how many times op was called, failed calls included
func (f *FaultStore) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultStore) check(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	n := f.calls[op]

	flt, ok := f.faults[op]
	if !ok {
		return nil
	}
	if n == flt.call || (flt.sticky && n >= flt.call) {
		return flt.err
	}
	return nil
}

func (f *FaultStore) Get(ctx context.Context, collection string) ([]store.Document, error) {
	if err := f.check(OpGet); err != nil {
		return nil, err
	}
	return f.Store.Get(ctx, collection)
}

func (f *FaultStore) Add(ctx context.Context, collection string, fields store.Fields) (string, error) {
	if err := f.check(OpAdd); err != nil {
		return "", err
	}
	return f.Store.Add(ctx, collection, fields)
}

func (f *FaultStore) Update(ctx context.Context, documentPath string, fields store.Fields) error {
	if err := f.check(OpUpdate); err != nil {
		return err
	}
	return f.Store.Update(ctx, documentPath, fields)
}

func (f *FaultStore) Delete(ctx context.Context, documentPath string) error {
	if err := f.check(OpDelete); err != nil {
		return err
	}
	return f.Store.Delete(ctx, documentPath)
}

// Receive waits for the next value on ch
func Receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(WaitTimeout):
		require.FailNow(t, "timed out waiting for a value")
	}
	var zero T
	return zero
}

// ReceiveMatching drains ch until a value satisfies match and returns it
func ReceiveMatching[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	deadline := time.After(WaitTimeout)
	var last T
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "channel closed")
			if match(v) {
				return v
			}
			last = v
		case <-deadline:
			require.FailNowf(t, "timed out waiting for a matching value", "last value: %+v", last)
			return last
		}
	}
}

// Eventually waits for cond to hold
func Eventually(t *testing.T, cond func() bool, msgAndArgs ...interface{}) {
	t.Helper()
	require.Eventually(t, cond, WaitTimeout, 5*time.Millisecond, msgAndArgs...)
}

// Never asserts cond stays false for a short period
func Never(t *testing.T, cond func() bool, msgAndArgs ...interface{}) {
	t.Helper()
	require.Never(t, cond, 100*time.Millisecond, 5*time.Millisecond, msgAndArgs...)
}

// MakeJSONRequest creates an HTTP request with JSON body
func MakeJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		bodyReader = bytes.NewReader(jsonBody)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ParseJSONResponse parses a JSON response into a target structure
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	err := json.Unmarshal(w.Body.Bytes(), target)
	require.NoError(t, err, "Failed to parse JSON response")
}
