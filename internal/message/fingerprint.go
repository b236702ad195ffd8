package message

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the dedup identity of a rendered notification: sha256 of
// the exact message text, hex encoded with a 0x prefix. Byte-identical text
// always maps to the same fingerprint; any change in the rendered state (an
// actual value appearing, a source revision) mints a new one, which is what
// lets the same logical event be announced once per state.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "0x" + hex.EncodeToString(sum[:])
}
