package cache

// ScopedKeyer wraps a Keyer with a prefix so several namespaces can share
// one backend.
//
// Example usage:
//
//	// Per-team documents in a shared Redis
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:abc123:")
//
//	// Unscoped keys for a private file cache
//	localKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DocumentKey generates a prefixed document key.
func (k *ScopedKeyer) DocumentKey(id string) string {
	return k.prefix + k.inner.DocumentKey(id)
}

// ContentKey generates a prefixed content key.
func (k *ScopedKeyer) ContentKey(text []byte) string {
	return k.prefix + k.inner.ContentKey(text)
}
