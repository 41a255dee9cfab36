package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies a processed document.
	ResultKey(inputHash string, opts ResultKeyOpts) string

	// OutlineKey identifies a rendered structure outline.
	OutlineKey(inputHash, format string) string
}

// ResultKeyOpts lists every option that changes the pipeline output.
type ResultKeyOpts struct {
	StartDepth  int      `json:"start_depth"`
	MaxDepth    int      `json:"max_depth"`
	KeepDepth   int      `json:"keep_depth"`
	BakeViewBox bool     `json:"bake_viewbox"`
	Prune       bool     `json:"prune"`
	Ungroup     bool     `json:"ungroup"`
	Remove      bool     `json:"remove"`
	Regroup     bool     `json:"regroup"`
	RemoveKinds []string `json:"remove_kinds"`
	GroupPrefix string   `json:"group_prefix"`
}

// DefaultKeyer produces "result:<sha256>" style keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey hashes the input hash together with the options.
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}

// OutlineKey hashes the input hash together with the output format.
func (DefaultKeyer) OutlineKey(inputHash, format string) string {
	return hashKey("outline", inputHash, format)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
