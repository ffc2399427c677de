package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSignatureHexRoundTrip(t *testing.T) {
	var sig Signature
	for i := range sig {
		sig[i] = byte(i)
	}
	parsed, err := SignatureFromHex(sig.Hex())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != sig {
		t.Fatalf("parsed %s, want %s", parsed, sig)
	}
}

func TestSignatureFromHexRejectsBadInput(t *testing.T) {
	tests := []string{
		"",
		"abcd",
		strings.Repeat("zz", SignatureSize),
		strings.Repeat("ab", SignatureSize+1),
	}
	for _, h := range tests {
		if _, err := SignatureFromHex(h); err == nil {
			t.Fatalf("expected error for %q", h)
		}
	}
}

func TestSignatureJSON(t *testing.T) {
	var sig Signature
	sig[0] = 0xde
	sig[31] = 0xad

	data, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Signature
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != sig {
		t.Fatalf("round trip drifted: %s != %s", back, sig)
	}
}

func TestNullSignature(t *testing.T) {
	if !NullSignature.IsNull() {
		t.Fatal("null signature must report null")
	}
	var sig Signature
	sig[0] = 1
	if sig.IsNull() {
		t.Fatal("non-zero signature must not report null")
	}
	if SigOrNull(nil) != NullSignature {
		t.Fatal("nil reference must fold to the null signature")
	}
	if SigOrNull(&sig) != sig {
		t.Fatal("non-nil reference must fold to itself")
	}
}
