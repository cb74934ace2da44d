package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"inkwell/app/models"

	"github.com/rs/zerolog"
)

// ContentStore owns the persisted BlogData aggregate. Every save overwrites
// the whole blob; there is no partial update.
type ContentStore struct {
	kv     KVStore
	logger zerolog.Logger
	now    func() time.Time

	// mu serialises load-modify-save cycles within this process.
	mu sync.Mutex
}

// NewContentStore wraps kv. now defaults to time.Now when nil.
func NewContentStore(kv KVStore, logger zerolog.Logger, now func() time.Time) *ContentStore {
	if now == nil {
		now = time.Now
	}
	return &ContentStore{
		kv:     kv,
		logger: logger.With().Str("component", "content_store").Logger(),
		now:    now,
	}
}

// KV exposes the underlying key-value store for the other persisted slots.
func (s *ContentStore) KV() KVStore {
	return s.kv
}

// Load returns the persisted blog. A missing or unreadable blob yields the
// seed blog instead of an error.
func (s *ContentStore) Load(ctx context.Context) models.BlogData {
	seed := models.DefaultBlogData(s.now())

	raw, err := s.kv.Get(ctx, BlogDataKey)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info().Msg("no blog data stored yet, using seed data")
		return seed
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("reading blog data failed, using seed data")
		return seed
	}

	var data models.BlogData
	if err := unmarshalEntity(raw, &data); err != nil {
		s.logger.Error().Err(err).Msg("stored blog data is malformed, using seed data")
		return seed
	}
	data.Repair(seed)
	return data
}

// Save overwrites the persisted blog with data.
func (s *ContentStore) Save(ctx context.Context, data models.BlogData) error {
	if err := PutJSON(ctx, s.kv, BlogDataKey, data); err != nil {
		s.logger.Error().Err(err).Msg("saving blog data failed")
		return fmt.Errorf("saving blog data: %w", err)
	}
	s.logger.Debug().Int("posts", len(data.Posts)).Msg("blog data saved")
	return nil
}

// Update runs fn against the current blog and saves its result while holding
// the store lock. Nothing is saved when fn returns an error.
func (s *ContentStore) Update(ctx context.Context, fn func(models.BlogData) (models.BlogData, error)) (models.BlogData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.Load(ctx))
	if err != nil {
		return models.BlogData{}, err
	}
	if err := s.Save(ctx, next); err != nil {
		return models.BlogData{}, err
	}
	return next, nil
}

// Export writes the current blog to w as indented JSON.
func (s *ContentStore) Export(ctx context.Context, w io.Writer) error {
	data, err := marshalEntity(s.Load(ctx))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// DecodeBlogData parses an exported blob. Only JSON well-formedness is checked.
func DecodeBlogData(r io.Reader) (models.BlogData, error) {
	var data models.BlogData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return models.BlogData{}, fmt.Errorf("parsing import: %w", err)
	}
	return data, nil
}

// Import replaces the whole blog with the JSON read from r.
func (s *ContentStore) Import(ctx context.Context, r io.Reader) (models.BlogData, error) {
	data, err := DecodeBlogData(r)
	if err != nil {
		return models.BlogData{}, err
	}
	data.Repair(models.DefaultBlogData(s.now()))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Save(ctx, data); err != nil {
		return models.BlogData{}, err
	}
	s.logger.Info().Int("posts", len(data.Posts)).Msg("blog data imported")
	return data, nil
}
