package signature

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/attestia/notary"
)

var testKey = []byte("test-secret-key")

func signedBytes(t *testing.T, codec *Codec, content []byte, owner string, docType notary.DocumentType) []byte {
	t.Helper()
	marker, err := codec.Create(owner, docType, "Acme Notary")
	if err != nil {
		t.Fatalf("create marker failed: %v", err)
	}
	return append(append(append([]byte{}, content...), '\n'), []byte(marker)...)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := New(testKey)

	signed := signedBytes(t, codec, []byte("hello"), "123412341234", notary.DocTypeIdentityDocument)

	verdict := codec.Verify(signed, "123412341234", notary.DocTypeIdentityDocument)
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got error %s", verdict.Error)
	}
	if !verdict.OwnerMatch || !verdict.TypeMatch {
		t.Fatalf("expected owner and type match, got %+v", verdict)
	}
	if verdict.Claim == nil {
		t.Fatalf("expected claim to be attached")
	}
	if verdict.Claim.Issuer != "Acme Notary" {
		t.Fatalf("unexpected issuer %q", verdict.Claim.Issuer)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	codec := New(testKey)

	_, err := codec.Create("owner", notary.DocumentType("driving_license"), "issuer")
	if err == nil {
		t.Fatalf("expected error for unknown document type")
	}
	if !errors.Is(err, notary.ErrInvalidDocumentType) {
		t.Fatalf("expected ErrInvalidDocumentType, got %v", err)
	}
	if !strings.Contains(err.Error(), "driving_license") {
		t.Fatalf("error should name the offending type: %v", err)
	}
}

func TestMarkerHidesRawOwner(t *testing.T) {
	codec := New(testKey)

	owner := "123412341234"
	marker, err := codec.Create(owner, notary.DocTypeBirthCertificate, "issuer")
	if err != nil {
		t.Fatalf("create marker failed: %v", err)
	}

	body, err := base64.StdEncoding.DecodeString(
		strings.TrimSuffix(strings.TrimPrefix(marker, SigStart), SigEnd),
	)
	if err != nil {
		t.Fatalf("marker payload is not valid base64: %v", err)
	}
	if bytes.Contains(body, []byte(owner)) {
		t.Fatalf("raw owner identifier leaked into the marker payload")
	}

	var claim notary.Claim
	if err := json.Unmarshal(body, &claim); err != nil {
		t.Fatalf("marker payload is not a claim: %v", err)
	}
	if claim.OwnerIDHash != notary.HashOwnerID(owner) {
		t.Fatalf("owner hash mismatch")
	}
}

func TestVerifyUnsignedContent(t *testing.T) {
	codec := New(testKey)

	verdict := codec.Verify([]byte("just some text with no marker"), "owner", notary.DocTypeOther)
	if verdict.Valid {
		t.Fatalf("unsigned content must not verify")
	}
	if verdict.Error != notary.ErrorNoSignatureFound {
		t.Fatalf("expected no_signature_found, got %s", verdict.Error)
	}
	if verdict.Claim != nil {
		t.Fatalf("no claim should be attached for unsigned content")
	}
}

func TestVerifyTamperedClaim(t *testing.T) {
	codec := New(testKey)

	signed := signedBytes(t, codec, []byte("payload"), "alice", notary.DocTypePropertyDeed)

	claim := codec.Decode(signed)
	if claim == nil {
		t.Fatalf("expected decodable claim")
	}

	// Rewrite the claim with a different owner but the original tag.
	claim.OwnerIDHash = notary.HashOwnerID("mallory")
	body, _ := json.Marshal(claim)
	forged := SigStart + base64.StdEncoding.EncodeToString(body) + SigEnd

	verdict := codec.Verify([]byte(forged), "mallory", notary.DocTypePropertyDeed)
	if verdict.Valid {
		t.Fatalf("forged claim must not verify")
	}
	if verdict.Error != notary.ErrorTamperedSignature {
		t.Fatalf("expected tampered_signature, got %s", verdict.Error)
	}
	if verdict.OwnerMatch || verdict.TypeMatch {
		t.Fatalf("no field comparison may succeed after a tag failure")
	}
}

func TestVerifyWrongKey(t *testing.T) {
	signed := signedBytes(t, New(testKey), []byte("payload"), "alice", notary.DocTypeLegalContract)

	verdict := New([]byte("different-key")).Verify(signed, "alice", notary.DocTypeLegalContract)
	if verdict.Valid {
		t.Fatalf("claim signed under another key must not verify")
	}
	if verdict.Error != notary.ErrorTamperedSignature {
		t.Fatalf("expected tampered_signature, got %s", verdict.Error)
	}
}

func TestVerifyOwnerMismatchShortCircuits(t *testing.T) {
	codec := New(testKey)

	signed := signedBytes(t, codec, []byte("payload"), "alice", notary.DocTypeDegreeCertificate)

	verdict := codec.Verify(signed, "bob", notary.DocTypeDegreeCertificate)
	if verdict.Valid {
		t.Fatalf("owner mismatch must not verify")
	}
	if verdict.Error != notary.ErrorOwnerMismatch {
		t.Fatalf("expected owner_mismatch, got %s", verdict.Error)
	}
	// Type is never inspected once the owner check fails.
	if verdict.OwnerMatch || verdict.TypeMatch {
		t.Fatalf("expected both match flags false, got %+v", verdict)
	}
}

func TestVerifyTypeMismatch(t *testing.T) {
	codec := New(testKey)

	signed := signedBytes(t, codec, []byte("payload"), "alice", notary.DocTypeEmploymentLetter)

	verdict := codec.Verify(signed, "alice", notary.DocTypeLegalContract)
	if verdict.Valid {
		t.Fatalf("type mismatch must not verify")
	}
	if verdict.Error != notary.ErrorTypeMismatch {
		t.Fatalf("expected type_mismatch, got %s", verdict.Error)
	}
	if !verdict.OwnerMatch {
		t.Fatalf("owner matched and must be reported as such")
	}
	if verdict.TypeMatch {
		t.Fatalf("type must be reported as mismatched")
	}
}

func TestVerifyRejectsEveryPayloadBitFlip(t *testing.T) {
	codec := New(testKey)

	signed := signedBytes(t, codec, []byte("content"), "alice", notary.DocTypeIdentityDocument)

	start := bytes.Index(signed, []byte(SigStart))
	end := bytes.Index(signed, []byte(SigEnd))
	if start < 0 || end <= start {
		t.Fatalf("marker not found in signed bytes")
	}
	start += len(SigStart)

	for i := start; i < end; i++ {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte{}, signed...)
			mutated[i] ^= 1 << bit

			verdict := codec.Verify(mutated, "alice", notary.DocTypeIdentityDocument)
			if verdict.Valid {
				t.Fatalf("payload byte %d bit %d flipped and the claim still verified", i-start, bit)
			}
		}
	}
}

func TestDecodeInsideBinaryContent(t *testing.T) {
	codec := New(testKey)

	marker, err := codec.Create("alice", notary.DocTypeOther, "issuer")
	if err != nil {
		t.Fatalf("create marker failed: %v", err)
	}

	content := append([]byte{0x00, 0xff, 0xfe, 0x89, 'P', 'N', 'G'}, []byte(marker)...)
	content = append(content, 0xde, 0xad, 0xbe, 0xef)

	claim := codec.Decode(content)
	if claim == nil {
		t.Fatalf("marker inside binary content must decode")
	}
	if claim.OwnerIDHash != notary.HashOwnerID("alice") {
		t.Fatalf("decoded claim does not match")
	}
}

func TestDecodeLeftmostMarkerWins(t *testing.T) {
	codec := New(testKey)

	first, err := codec.Create("alice", notary.DocTypeBirthCertificate, "issuer")
	if err != nil {
		t.Fatalf("create marker failed: %v", err)
	}
	second, err := codec.Create("bob", notary.DocTypeBirthCertificate, "issuer")
	if err != nil {
		t.Fatalf("create marker failed: %v", err)
	}

	content := []byte(first + "\n" + second)
	claim := codec.Decode(content)
	if claim == nil {
		t.Fatalf("expected a claim")
	}
	if claim.OwnerIDHash != notary.HashOwnerID("alice") {
		t.Fatalf("expected the leftmost marker to win")
	}
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	codec := New(testKey)

	// Valid delimiters, payload decodes as base64 but not as JSON.
	junk := SigStart + base64.StdEncoding.EncodeToString([]byte("not json")) + SigEnd
	if claim := codec.Decode([]byte(junk)); claim != nil {
		t.Fatalf("malformed envelope must yield no claim")
	}

	verdict := codec.Verify([]byte(junk), "alice", notary.DocTypeOther)
	if verdict.Error != notary.ErrorNoSignatureFound {
		t.Fatalf("malformed envelope verifies like unsigned content, got %s", verdict.Error)
	}
}
