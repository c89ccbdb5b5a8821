package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/reftext/pkg/cache"
	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/observability"
	"github.com/matzehuels/reftext/pkg/reftext"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	s := New(c, opts)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	shared := reftext.NewArray(1.0, "x")
	root := reftext.NewArray(shared, shared)
	root.Append(root)

	id, err := s.Put(ctx, root)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	arr, ok := got.(*reftext.Array)
	if !ok {
		t.Fatalf("Get returned %T, want *reftext.Array", got)
	}
	if arr.Len() != 3 {
		t.Fatalf("len = %d, want 3", arr.Len())
	}
	if arr.At(0) != arr.At(1) {
		t.Error("shared elements lost identity")
	}
	if arr.At(2) != any(arr) {
		t.Error("self reference lost identity")
	}
	if !reftext.Equal(root, arr) {
		t.Error("stored value differs from original")
	}
}

func TestPutDeduplicatesContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	first, err := s.Put(ctx, reftext.NewArray(1.0, 2.0))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	second, err := s.Put(ctx, reftext.NewArray(1.0, 2.0))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if first != second {
		t.Errorf("identical content got ids %q and %q", first, second)
	}

	// Once the document is gone the index entry is stale.
	if err := s.Delete(ctx, first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	third, err := s.Put(ctx, reftext.NewArray(1.0, 2.0))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if third == first {
		t.Error("Put returned id of deleted document")
	}
}

// failingCache fails reads of keys with the given prefix.
type failingCache struct {
	cache.Cache
	prefix string
}

func (c failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.HasPrefix(key, c.prefix) {
		return nil, false, cache.ErrNetwork
	}
	return c.Cache.Get(ctx, key)
}

func TestPutReportsBackendReadErrors(t *testing.T) {
	ctx := context.Background()

	for _, prefix := range []string{"content:", "doc:"} {
		t.Run(prefix, func(t *testing.T) {
			fc, err := cache.NewFileCache(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileCache: %v", err)
			}
			s := New(fc, Options{})
			if _, err := s.Put(ctx, reftext.NewArray(1.0)); err != nil {
				t.Fatalf("first Put: %v", err)
			}

			s = New(failingCache{Cache: fc, prefix: prefix}, Options{})
			id, err := s.Put(ctx, reftext.NewArray(1.0))
			if !errors.Is(err, errors.ErrCodeNetwork) {
				t.Fatalf("Put error = %v, want NETWORK_ERROR", err)
			}
			if id != "" {
				t.Errorf("Put returned id %q with an error", id)
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	if err := s.Save(ctx, "config", "old"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "config", "new"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "config")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "new" {
		t.Errorf("Get = %v, want new", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t, Options{})
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get missing = %v, want NOT_FOUND", err)
	}
}

func TestGetMalformedStoredText(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	keyer := cache.NewDefaultKeyer()
	if err := c.Set(ctx, keyer.DocumentKey("bad"), []byte("[1,"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s := New(c, Options{Keyer: keyer})
	_, err = s.Get(ctx, "bad")
	if !errors.Is(err, errors.ErrCodeMalformed) {
		t.Fatalf("Get = %v, want MALFORMED", err)
	}

	text, err := s.GetText(ctx, "bad")
	if err != nil || text != "[1," {
		t.Errorf("GetText = %q, %v", text, err)
	}
}

func TestInvalidIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	for _, id := range []string{"", "../etc", "a/b", "has space"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Get(%q) = %v, want INVALID_ID", id, err)
		}
		if err := s.Save(ctx, id, 1.0); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Save(%q) = %v, want INVALID_ID", id, err)
		}
		if err := s.Delete(ctx, id); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Delete(%q) = %v, want INVALID_ID", id, err)
		}
	}
}

func TestPutRejectsUnstorable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	if _, err := s.Put(ctx, func() {}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put(func) = %v, want INVALID_INPUT", err)
	}
	if _, err := s.Put(ctx, struct{ X int }{1}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Put(struct) = %v, want UNSUPPORTED", err)
	}
}

func TestPutText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{})

	id, err := s.PutText(ctx, `{"a":[1],"b":/{"a"}/}`)
	if err != nil {
		t.Fatalf("PutText: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	obj := got.(*reftext.Object)
	a, _ := obj.Get("a")
	b, _ := obj.Get("b")
	if a != b {
		t.Error("reference not resolved to the same array")
	}

	if _, err := s.PutText(ctx, "[1 2]"); !errors.Is(err, errors.ErrCodeMalformed) {
		t.Errorf("PutText malformed = %v, want MALFORMED", err)
	}
}

func TestIndentedStorage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{Indent: "  "})

	id, err := s.Put(ctx, reftext.NewArray(1.0))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	text, err := s.GetText(ctx, id)
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if !strings.Contains(text, "\n  1") {
		t.Errorf("text %q is not indented", text)
	}
}

func TestScopedNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	alpha := New(c, Options{Keyer: cache.NewScopedKeyer(nil, "alpha")})
	beta := New(c, Options{Keyer: cache.NewScopedKeyer(nil, "beta")})

	if err := alpha.Save(ctx, "doc", 1.0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := beta.Get(ctx, "doc"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("beta sees alpha's document: %v", err)
	}
}

func TestExpiredDocumentIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Options{TTL: time.Millisecond})

	if err := s.Save(ctx, "short", 1.0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get expired = %v, want NOT_FOUND", err)
	}
}

func TestNullCacheStoresNothing(t *testing.T) {
	ctx := context.Background()
	s := New(cache.NewNullCache(), Options{})

	id, err := s.Put(ctx, 1.0)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get = %v, want NOT_FOUND", err)
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	codec := &countingCodecHooks{}
	hooks := &countingCacheHooks{}
	observability.SetCodecHooks(codec)
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	s := newTestStore(t, Options{})
	id, err := s.Put(ctx, "hello")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Get(ctx, id); err != nil {
		t.Fatalf("Get: %v", err)
	}
	_, _ = s.Get(ctx, "missing")

	if codec.serialize != 1 || codec.deserialize != 1 {
		t.Errorf("codec hooks = %+v, want one of each", codec)
	}
	if hooks.sets != 2 {
		t.Errorf("sets = %d, want 2 (document and content index)", hooks.sets)
	}
	if hooks.hits != 1 {
		t.Errorf("hits = %d, want 1", hooks.hits)
	}
	if hooks.misses != 2 {
		t.Errorf("misses = %d, want 2 (content index and missing document)", hooks.misses)
	}
}

type countingCodecHooks struct {
	observability.NoopCodecHooks
	serialize, deserialize int
}

func (h *countingCodecHooks) OnSerialize(context.Context, int, time.Duration, error) {
	h.serialize++
}

func (h *countingCodecHooks) OnDeserialize(context.Context, int, time.Duration, error) {
	h.deserialize++
}

type countingCacheHooks struct {
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }
