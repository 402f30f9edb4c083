package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex characters for log and display use
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	CurveHash Hash
	TableHash Hash
)

// Constructors
func NewCurveHash(data []byte) CurveHash { return CurveHash(NewHash(data)) }
func NewTableHash(data []byte) TableHash { return TableHash(NewHash(data)) }

// String conversions
func (h CurveHash) String() string { return Hash(h).String() }
func (h TableHash) String() string { return Hash(h).String() }

// Short forms for log and display use
func (h CurveHash) Short() string { return Hash(h).Short() }
func (h TableHash) Short() string { return Hash(h).Short() }

// Hash computation helpers

// ComputeCurveHash fingerprints one sampled curve. The %.17g format
// round-trips float64 exactly, so equal curves always hash equal.
func ComputeCurveHash(key string, t, y []float64) CurveHash {
	var data strings.Builder
	data.WriteString(key)
	for i := range t {
		data.WriteByte('|')
		data.WriteString(strconv.FormatFloat(t[i], 'g', 17, 64))
		data.WriteByte(':')
		if i < len(y) {
			data.WriteString(strconv.FormatFloat(y[i], 'g', 17, 64))
		}
	}
	return NewCurveHash([]byte(data.String()))
}

// ComputeTableHash fingerprints a whole table from its per-curve hashes,
// sorted by key so column order never changes the result.
func ComputeTableHash(curveHashes map[string]CurveHash) TableHash {
	keys := make([]string, 0, len(curveHashes))
	for k := range curveHashes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", curveHashes[key]))
	}

	return NewTableHash([]byte(data.String()))
}
