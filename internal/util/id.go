package util

import (
	"crypto/rand"
	"encoding/hex"
)

const idEntropyBytes = 16

// NewID returns a random identifier with an entity prefix, e.g. "gr_ab12…".
// Prefixes in use: gr (grantha), vs (verse), cm (commentary), cd (commentary
// definition), sg (suggestion), adm (admin), imp (import batch), jti and rft
// for token identifiers. An empty prefix yields the bare hex string.
func NewID(prefix string) string {
	buf := make([]byte, idEntropyBytes)
	_, _ = rand.Read(buf)
	suffix := hex.EncodeToString(buf)
	if prefix == "" {
		return suffix
	}
	return prefix + "_" + suffix
}
