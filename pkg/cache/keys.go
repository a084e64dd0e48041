package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body within a namespace.
	HTTPKey(namespace, key string) string
	// NodeKey keys a resolved artifact node fetched from repository.
	NodeKey(repository, coordinate string) string
	// ResultKey keys a full collection result.
	ResultKey(root string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds every option that changes a collection's outcome.
type ResultKeyOpts struct {
	Repositories   []string `json:"repositories"`
	MaxDepth       int      `json:"max_depth"`
	ExcludedScopes []string `json:"excluded_scopes,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) NodeKey(repository, coordinate string) string {
	return "node:" + Hash([]byte(repository))[:16] + ":" + coordinate
}

func (DefaultKeyer) ResultKey(root string, opts ResultKeyOpts) string {
	return hashKey("result", root, opts)
}

// hashKey hashes the JSON encoding of parts into "prefix:<sha256>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
