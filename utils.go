package notary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// GetHash returns the SHA-256 digest of data.
func GetHash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// GetHashHex returns the lowercase hex SHA-256 digest of data. This is the
// content hash recorded on chain for notarized documents.
func GetHashHex(data []byte) string {
	h := GetHash(data)
	return hex.EncodeToString(h[:])
}

// HashOwnerID derives the one-way owner digest stored inside a Claim.
// Deterministic and unsalted: verification re-derives it from the presented
// identifier and compares.
func HashOwnerID(ownerID string) string {
	return GetHashHex([]byte(ownerID))
}

// HashToBytes32 converts a hex content hash into the bytes32 form the
// contract expects.
func HashToBytes32(hashHex string) ([32]byte, error) {
	hashHex = strings.TrimPrefix(hashHex, "0x")

	var out [32]byte
	b, err := hex.DecodeString(hashHex)
	if err != nil {
		return out, fmt.Errorf("invalid hash encoding")
	}
	if len(b) != 32 {
		return out, fmt.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
