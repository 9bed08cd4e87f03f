package notary

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDocumentTypeValid(t *testing.T) {
	for _, dt := range DocumentTypes() {
		if !dt.Valid() {
			t.Errorf("%s must be valid", dt)
		}
	}
	for _, dt := range []DocumentType{"", "passport", "BIRTH_CERTIFICATE"} {
		if dt.Valid() {
			t.Errorf("%q must not be valid", dt)
		}
	}
}

func TestVerdictJSONRoundTrip(t *testing.T) {
	v := Verdict{Error: ErrorOwnerMismatch}

	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"owner_mismatch"`) {
		t.Fatalf("error kind must serialize as its string form: %s", body)
	}

	var back Verdict
	if err := json.Unmarshal(body, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Error != ErrorOwnerMismatch {
		t.Fatalf("expected owner_mismatch back, got %s", back.Error)
	}
}

func TestVerdictMessageNamesActualType(t *testing.T) {
	v := Verdict{
		Error: ErrorTypeMismatch,
		Claim: &Claim{DocumentType: DocTypeBirthCertificate},
	}
	if !strings.Contains(v.Message(), "birth_certificate") {
		t.Fatalf("type mismatch message must name the actual type: %s", v.Message())
	}
}

func TestHashToBytes32(t *testing.T) {
	hex := GetHashHex([]byte("content"))

	if _, err := HashToBytes32(hex); err != nil {
		t.Fatalf("valid digest must convert: %v", err)
	}
	if _, err := HashToBytes32("0x" + hex); err != nil {
		t.Fatalf("0x prefix must be accepted: %v", err)
	}
	if _, err := HashToBytes32("zz"); err == nil {
		t.Fatalf("non-hex input must be rejected")
	}
	if _, err := HashToBytes32(hex[:32]); err == nil {
		t.Fatalf("short digest must be rejected")
	}
}
