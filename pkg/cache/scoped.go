package cache

// ScopedKeyer wraps a Keyer with a prefix, giving tenants or
// deployments separate key namespaces on a shared backend.
//
//	// Per-user entries
//	userKeyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "user:abc123:")
//
//	// Shared entries
//	globalKeyer := cache.NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key
// generated by inner. A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PageKey generates a prefixed document page key.
func (k *ScopedKeyer) PageKey(documentID, format string) string {
	return k.prefix + k.inner.PageKey(documentID, format)
}

// ComponentKey generates a prefixed component tree key.
func (k *ScopedKeyer) ComponentKey(inputHash string, opts ComponentKeyOpts) string {
	return k.prefix + k.inner.ComponentKey(inputHash, opts)
}

// RunsKey generates a prefixed run snapshot key.
func (k *ScopedKeyer) RunsKey(treeHash string, opts RunsKeyOpts) string {
	return k.prefix + k.inner.RunsKey(treeHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(runsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(runsHash, opts)
}
