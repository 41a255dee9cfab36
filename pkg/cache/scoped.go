package cache

// ScopedKeyer wraps a Keyer with a prefix, giving separate namespaces to
// deployments that share one Redis or Mongo backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(inputHash, opts)
}

// OutlineKey generates a prefixed outline key.
func (k *ScopedKeyer) OutlineKey(inputHash, format string) string {
	return k.prefix + k.inner.OutlineKey(inputHash, format)
}
