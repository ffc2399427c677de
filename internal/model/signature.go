package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SignatureSize is the fixed width of a genetic code content address.
const SignatureSize = 32

// Signature is the deterministic content address of a genetic code. It is
// derived, never assigned, and acts as the primary key in every tier.
type Signature [SignatureSize]byte

// NullSignature is the canonical encoding of "no genetic code" inside
// hashed material. Nullable references use pointers; NullSignature exists
// so that nil folds to a fixed 32 zero bytes when hashed.
var NullSignature Signature

// IsNull reports whether the signature is all zero.
func (s Signature) IsNull() bool {
	return s == NullSignature
}

// Hex returns the lowercase hexadecimal form used for keys and logs.
func (s Signature) Hex() string {
	return hex.EncodeToString(s[:])
}

func (s Signature) String() string {
	return s.Hex()
}

// SignatureFromHex parses a 64 character hexadecimal string.
func SignatureFromHex(h string) (Signature, error) {
	var s Signature
	b, err := hex.DecodeString(h)
	if err != nil {
		return s, fmt.Errorf("parse signature: %w", err)
	}
	if len(b) != SignatureSize {
		return s, fmt.Errorf("parse signature: %d bytes, want %d", len(b), SignatureSize)
	}
	copy(s[:], b)
	return s, nil
}

// SignatureFromBytes copies a raw 32 byte signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, fmt.Errorf("signature is %d bytes, want %d", len(b), SignatureSize)
	}
	copy(s[:], b)
	return s, nil
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hex())
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var h string
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	parsed, err := SignatureFromHex(h)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
