package wiretype

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of a value's canonical encoding.
type Hash [32]byte

// String returns the digest as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// digestKey is the 32-byte key for BLAKE3 keyed hashing. The fixed
// key domain-separates wiretype digests from any other BLAKE3 use of
// the same bytes; changing it invalidates every existing digest.
// The value is the ASCII name zero-padded to 32 bytes so it stays
// readable in hex dumps.
var digestKey = [32]byte{
	'w', 'i', 'r', 'e', 't', 'y', 'p', 'e', '.', 'v', 'a', 'l', 'u', 'e', 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest computes the content hash of a value under a descriptor.
// Because the encoding is canonical, logically equal values digest
// identically no matter how their maps were built up. Fails exactly
// when Encode would.
func Digest(v *Value, desc *Descriptor, reg *Registry) (Hash, error) {
	data, err := Encode(v, desc, reg)
	if err != nil {
		return Hash{}, err
	}
	return keyedHash(data), nil
}

func keyedHash(data []byte) Hash {
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		// The key is a compile-time 32-byte constant; NewKeyed only
		// fails on wrong key length.
		panic("wiretype: blake3 keyed hasher: " + err.Error())
	}
	h.Write(data)

	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
