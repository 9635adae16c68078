// Package manifest is the boundary to the out-of-scope workload-descriptor
// transform. Workload descriptions enter the agent already rendered to JSON;
// this package canonicalizes those bytes and derives the content hash the
// chain records as the deployment version. Providers compare the manifest
// they receive byte-for-byte against that hash, so canonicalization must be
// deterministic.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Canonical re-encodes manifest JSON into its canonical form: object keys
// sorted, no insignificant whitespace. Idempotent.
func Canonical(raw []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("manifest is not valid JSON: %w", err)
	}
	// encoding/json marshals map keys in sorted order, which is exactly the
	// canonical form providers hash.
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not canonicalize manifest: %w", err)
	}
	return out, nil
}

// Version derives the deployment version hash from canonical manifest bytes.
func Version(canonical []byte) []byte {
	sum := sha256.Sum256(canonical)
	return sum[:]
}
