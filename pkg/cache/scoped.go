package cache

// ScopedKeyer prepends a fixed prefix to every key of an inner Keyer, so
// several deployments can share one Redis or Mongo instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer defaults
// to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) NodeKey(repository, coordinate string) string {
	return k.prefix + k.inner.NodeKey(repository, coordinate)
}

func (k *ScopedKeyer) ResultKey(root string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(root, opts)
}
