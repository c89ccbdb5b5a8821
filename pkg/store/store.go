// Package store keeps reftext documents in a [cache.Cache].
//
// A document is any value [reftext.Serialize] accepts. It is stored as its
// reftext text under a [cache.Keyer] document key, so shared and cyclic
// structure survives a round trip through Redis, MongoDB or the file cache.
//
//	c, _ := cache.NewFileCache(dir)
//	s := store.New(c, store.Options{TTL: 30 * 24 * time.Hour})
//
//	id, _ := s.Put(ctx, value)     // new random id
//	v, _ := s.Get(ctx, id)         // *reftext.Array / *reftext.Object / scalar
//	_ = s.Delete(ctx, id)
//
// Put is content addressed: storing the same text twice returns the id of
// the first copy while it still exists.
package store

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/reftext/pkg/cache"
	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/observability"
	"github.com/matzehuels/reftext/pkg/reftext"
)

// Hook key types reported to observability.CacheHooks.
const (
	keyTypeDocument = "document"
	keyTypeContent  = "content"
)

// Options configures a Store.
type Options struct {
	// TTL applies to every entry written. Zero keeps entries forever.
	TTL time.Duration

	// Keyer builds backend keys. Defaults to cache.NewDefaultKeyer().
	Keyer cache.Keyer

	// Indent pretty-prints stored text.
	Indent string

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

// Store reads and writes documents.
type Store struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	indent string
	logger *log.Logger
}

// New creates a store over c.
func New(c cache.Cache, opts Options) *Store {
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Store{
		cache:  c,
		keyer:  opts.Keyer,
		ttl:    opts.TTL,
		indent: opts.Indent,
		logger: opts.Logger,
	}
}

// Put stores v under a new id and returns the id. If identical text is
// already stored, the existing id is returned instead.
func (s *Store) Put(ctx context.Context, v any) (string, error) {
	text, err := s.encode(ctx, v)
	if err != nil {
		return "", err
	}

	contentKey := s.keyer.ContentKey([]byte(text))
	if existing, ok, err := s.lookupContent(ctx, contentKey); err != nil {
		return "", err
	} else if ok {
		s.logger.Debug("document already stored", "id", existing)
		return existing, nil
	}

	id := uuid.NewString()
	if err := s.write(ctx, id, text); err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, contentKey, []byte(id), s.ttl); err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "index document %s", id)
	}
	observability.Cache().OnCacheSet(ctx, keyTypeContent, len(id))
	return id, nil
}

// PutText stores text that is already in reftext form after checking that
// it deserializes.
func (s *Store) PutText(ctx context.Context, text string) (string, error) {
	v, err := s.decode(ctx, text)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, v)
}

// Save stores v under the caller's id, replacing any previous document.
func (s *Store) Save(ctx context.Context, id string, v any) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	text, err := s.encode(ctx, v)
	if err != nil {
		return err
	}
	return s.write(ctx, id, text)
}

// Get loads and deserializes document id. A missing document is NOT_FOUND;
// stored text that no longer parses surfaces its MALFORMED error.
func (s *Store) Get(ctx context.Context, id string) (any, error) {
	text, err := s.GetText(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, text)
}

// GetText loads the stored text of document id without deserializing it.
func (s *Store) GetText(ctx context.Context, id string) (string, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return "", err
	}
	data, hit, err := s.cache.Get(ctx, s.keyer.DocumentKey(id))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "read document %s", id)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeDocument)
		s.logger.Debug("document miss", "id", id)
		return "", errors.New(errors.ErrCodeNotFound, "document %s not found", id)
	}
	observability.Cache().OnCacheHit(ctx, keyTypeDocument)
	s.logger.Debug("document hit", "id", id, "bytes", len(data))
	return string(data), nil
}

// Delete removes document id. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, s.keyer.DocumentKey(id)); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete document %s", id)
	}
	s.logger.Debug("document deleted", "id", id)
	return nil
}

// Close closes the underlying cache.
func (s *Store) Close() error {
	return s.cache.Close()
}

func (s *Store) write(ctx context.Context, id, text string) error {
	if err := s.cache.Set(ctx, s.keyer.DocumentKey(id), []byte(text), s.ttl); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "write document %s", id)
	}
	observability.Cache().OnCacheSet(ctx, keyTypeDocument, len(text))
	s.logger.Debug("document written", "id", id, "bytes", len(text))
	return nil
}

// lookupContent returns the id indexed under contentKey if that document
// still exists.
func (s *Store) lookupContent(ctx context.Context, contentKey string) (string, bool, error) {
	data, hit, err := s.cache.Get(ctx, contentKey)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeNetwork, err, "read content index")
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeContent)
		return "", false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyTypeContent)

	id := string(data)
	if errors.ValidateDocumentID(id) != nil {
		return "", false, nil
	}
	_, ok, err := s.cache.Get(ctx, s.keyer.DocumentKey(id))
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeNetwork, err, "read document %s", id)
	}
	if !ok {
		return "", false, nil
	}
	return id, true, nil
}

func (s *Store) encode(ctx context.Context, v any) (string, error) {
	start := time.Now()
	text, ok, err := reftext.SerializeWithOptions(v, reftext.EncodeOptions{Indent: s.indent})
	if err == nil && !ok {
		err = errors.New(errors.ErrCodeInvalidInput, "value of type %T cannot be stored", v)
	}
	observability.Codec().OnSerialize(ctx, len(text), time.Since(start), err)
	return text, err
}

func (s *Store) decode(ctx context.Context, text string) (any, error) {
	start := time.Now()
	v, err := reftext.Deserialize(text)
	observability.Codec().OnDeserialize(ctx, len(text), time.Since(start), err)
	return v, err
}
