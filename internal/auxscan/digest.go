package auxscan

import "crypto/sha256"

// Digest is a fixed 256-bit fingerprint of auxiliary-file directives.
type Digest [32]byte

// Zero reports whether the digest is the zero value (nothing fingerprinted).
func (d Digest) Zero() bool {
	return d == Digest{}
}

// Combine builds an aggregate digest: H(part1 || part2 || ...).
// Parts must arrive in deterministic order.
func Combine(parts ...Digest) Digest {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func digestBytes(b []byte) Digest {
	return sha256.Sum256(b)
}
