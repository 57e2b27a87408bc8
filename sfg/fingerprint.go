package sfg

import (
	"crypto/sha256"
	"encoding/hex"
)

// fuseFingerprint content-addresses a fused body from its two source
// fingerprints, the same SHA-256-prefix technique the teacher's scheduler
// uses for deterministic order keys (ComputeOrderKey).
func fuseFingerprint(a, b string) string {
	h := sha256.New()
	h.Write([]byte(a))
	h.Write([]byte("|"))
	h.Write([]byte(b))
	return hex.EncodeToString(h.Sum(nil))[:32]
}
