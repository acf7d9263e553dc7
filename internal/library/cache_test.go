package library

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/msto63/retroscribe/internal/gateway"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	cache, err := NewCache(filepath.Join(t.TempDir(), "library.db"), ttl)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func sampleRecordings() []gateway.Recording {
	return []gateway.Recording{
		{ID: "rec-1", Filename: "recording_1.wav", Title: "morning interview", DateCreated: "2026-08-20T10:00:00", SizeBytes: 2048},
		{ID: "rec-2", Filename: "recording_2.wav", DateCreated: "2026-08-21T09:30:00", SizeBytes: 4096},
	}
}

func TestCache_MissWhenEmpty(t *testing.T) {
	cache := newTestCache(t, time.Minute)

	if _, ok := cache.List(); ok {
		t.Error("empty cache should miss")
	}
	if _, ok := cache.Get("rec-1"); ok {
		t.Error("empty cache Get should miss")
	}
}

func TestCache_ReplaceAllThenList(t *testing.T) {
	cache := newTestCache(t, time.Minute)

	if err := cache.ReplaceAll(sampleRecordings()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	recordings, ok := cache.List()
	if !ok {
		t.Fatal("cache should hit after ReplaceAll")
	}
	if len(recordings) != 2 {
		t.Fatalf("got %v recordings, want 2", len(recordings))
	}

	// Newest first
	if recordings[0].ID != "rec-2" {
		t.Errorf("first recording = %v, want rec-2", recordings[0].ID)
	}

	rec, ok := cache.Get("rec-1")
	if !ok {
		t.Fatal("Get(rec-1) should hit")
	}
	if rec.Title != "morning interview" {
		t.Errorf("title = %v", rec.Title)
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache := newTestCache(t, time.Minute)
	cache.ReplaceAll(sampleRecordings())

	if err := cache.Invalidate(); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	if _, ok := cache.List(); ok {
		t.Error("invalidated cache should miss")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	cache := newTestCache(t, 10*time.Millisecond)
	cache.ReplaceAll(sampleRecordings())

	if _, ok := cache.List(); !ok {
		t.Fatal("cache should hit immediately after fill")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.List(); ok {
		t.Error("cache should miss after TTL")
	}
}

// fakeLibraryBackend counts backend calls to observe read-through behavior
type fakeLibraryBackend struct {
	listCalls  int
	recordings []gateway.Recording
	listErr    error
	deleteErr  error
}

func (f *fakeLibraryBackend) ListRecordings(ctx context.Context) ([]gateway.Recording, error) {
	f.listCalls++
	return f.recordings, f.listErr
}

func (f *fakeLibraryBackend) GetRecording(ctx context.Context, recordingID string) (*gateway.Recording, error) {
	for _, rec := range f.recordings {
		if rec.ID == recordingID {
			return &rec, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeLibraryBackend) SaveRecording(ctx context.Context, sessionID string, metadata map[string]string) (*gateway.Recording, error) {
	return &gateway.Recording{ID: "rec-new"}, nil
}

func (f *fakeLibraryBackend) DeleteRecording(ctx context.Context, recordingID string) error {
	return f.deleteErr
}

func (f *fakeLibraryBackend) Retranscribe(ctx context.Context, recordingID string, params gateway.Parameters) (*gateway.RetranscribeResult, error) {
	return &gateway.RetranscribeResult{}, nil
}

func TestService_ReadThrough(t *testing.T) {
	backend := &fakeLibraryBackend{recordings: sampleRecordings()}
	service := NewService(backend, newTestCache(t, time.Minute))

	first, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("got %v recordings", len(first))
	}
	if backend.listCalls != 1 {
		t.Errorf("backend calls = %v, want 1", backend.listCalls)
	}

	// Second list must be served from cache
	if _, err := service.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if backend.listCalls != 1 {
		t.Errorf("backend calls = %v, want 1 (cache hit)", backend.listCalls)
	}
}

func TestService_SaveInvalidatesCache(t *testing.T) {
	backend := &fakeLibraryBackend{recordings: sampleRecordings()}
	service := NewService(backend, newTestCache(t, time.Minute))

	service.List(context.Background())

	if _, err := service.Save(context.Background(), "s1", "new take"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	service.List(context.Background())
	if backend.listCalls != 2 {
		t.Errorf("backend calls = %v, want 2 (cache invalidated by save)", backend.listCalls)
	}
}

func TestService_DeleteInvalidatesCache(t *testing.T) {
	backend := &fakeLibraryBackend{recordings: sampleRecordings()}
	service := NewService(backend, newTestCache(t, time.Minute))

	service.List(context.Background())

	if err := service.Delete(context.Background(), "rec-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	service.List(context.Background())
	if backend.listCalls != 2 {
		t.Errorf("backend calls = %v, want 2 (cache invalidated by delete)", backend.listCalls)
	}
}

func TestService_DeleteFailureKeepsCache(t *testing.T) {
	backend := &fakeLibraryBackend{recordings: sampleRecordings(), deleteErr: errors.New("backend down")}
	service := NewService(backend, newTestCache(t, time.Minute))

	service.List(context.Background())

	if err := service.Delete(context.Background(), "rec-1"); err == nil {
		t.Fatal("expected delete error")
	}

	service.List(context.Background())
	if backend.listCalls != 1 {
		t.Errorf("backend calls = %v, failed delete must not invalidate", backend.listCalls)
	}
}

func TestService_RetranscribeInvalidatesCache(t *testing.T) {
	backend := &fakeLibraryBackend{recordings: sampleRecordings()}
	service := NewService(backend, newTestCache(t, time.Minute))

	service.List(context.Background())

	if _, err := service.Retranscribe(context.Background(), "rec-1", gateway.DefaultParameters()); err != nil {
		t.Fatalf("Retranscribe() error = %v", err)
	}

	service.List(context.Background())
	if backend.listCalls != 2 {
		t.Errorf("backend calls = %v, want 2", backend.listCalls)
	}
}
