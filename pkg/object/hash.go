package object

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBytes computes the raw SHA-256 hash of data.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the hash of the envelope "<kind>\0<payload>", per
// spec §3: "each [object is] identified by the hash of <kind>\0<payload>".
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha256.New()
	h.Write([]byte(objType))
	h.Write([]byte{0})
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
