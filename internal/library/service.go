package library

import (
	"context"
	"time"

	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/pkg/core/logging"
)

// Backend is the slice of the gateway the library needs
type Backend interface {
	ListRecordings(ctx context.Context) ([]gateway.Recording, error)
	GetRecording(ctx context.Context, recordingID string) (*gateway.Recording, error)
	SaveRecording(ctx context.Context, sessionID string, metadata map[string]string) (*gateway.Recording, error)
	DeleteRecording(ctx context.Context, recordingID string) error
	Retranscribe(ctx context.Context, recordingID string, params gateway.Parameters) (*gateway.RetranscribeResult, error)
}

// Service fronts the backend's recording library with a read-through cache.
// Every mutating call invalidates the cache.
type Service struct {
	backend Backend
	cache   *Cache
	log     *logging.Logger
}

// NewService creates a library service over the given backend and cache
func NewService(backend Backend, cache *Cache) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		log:     logging.New("library"),
	}
}

// List returns all recordings, served from cache while fresh
func (s *Service) List(ctx context.Context) ([]gateway.Recording, error) {
	if recordings, ok := s.cache.List(); ok {
		s.log.Debug("library served from cache", "count", len(recordings))
		return recordings, nil
	}

	recordings, err := s.backend.ListRecordings(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.ReplaceAll(recordings); err != nil {
		s.log.Warn("failed to refresh library cache", "error", err)
	}

	return recordings, nil
}

// Get returns one recording, from cache when possible
func (s *Service) Get(ctx context.Context, recordingID string) (*gateway.Recording, error) {
	if rec, ok := s.cache.Get(recordingID); ok {
		return rec, nil
	}
	return s.backend.GetRecording(ctx, recordingID)
}

// Save persists a session's recording and invalidates the cache
func (s *Service) Save(ctx context.Context, sessionID, title string) (*gateway.Recording, error) {
	var metadata map[string]string
	if title != "" {
		metadata = map[string]string{"title": title}
	}

	rec, err := s.backend.SaveRecording(ctx, sessionID, metadata)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(); err != nil {
		s.log.Warn("failed to invalidate library cache", "error", err)
	}

	return rec, nil
}

// Delete removes a recording and invalidates the cache
func (s *Service) Delete(ctx context.Context, recordingID string) error {
	if err := s.backend.DeleteRecording(ctx, recordingID); err != nil {
		return err
	}

	if err := s.cache.Invalidate(); err != nil {
		s.log.Warn("failed to invalidate library cache", "error", err)
	}

	return nil
}

// Retranscribe re-runs transcription of a stored recording and invalidates
// the cache
func (s *Service) Retranscribe(ctx context.Context, recordingID string, params gateway.Parameters) (*gateway.RetranscribeResult, error) {
	result, err := s.backend.Retranscribe(ctx, recordingID, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(); err != nil {
		s.log.Warn("failed to invalidate library cache", "error", err)
	}

	return result, nil
}

// Close releases the cache database
func (s *Service) Close() error {
	return s.cache.Close()
}

// DefaultCacheTTL bounds staleness when the backend is shared between clients
const DefaultCacheTTL = 5 * time.Minute
