package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments, or a
// test run and a live server, can share one Redis without colliding.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "plant-a:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DefinitionKey generates a prefixed definition key.
func (k *ScopedKeyer) DefinitionKey(source, name string) string {
	return k.prefix + k.inner.DefinitionKey(source, name)
}

// ViewKey generates a prefixed view key.
func (k *ScopedKeyer) ViewKey(defHash string, opts ViewKeyOpts) string {
	return k.prefix + k.inner.ViewKey(defHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(viewHash, opts)
}
