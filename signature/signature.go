package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/attestia/notary"
)

// Marker delimiters. Namespaced and punctuation-bounded so they are
// vanishingly unlikely to occur in ordinary document content.
const (
	SigStart = "NOTARY_SIG_START:"
	SigEnd   = ":NOTARY_SIG_END"
)

var sigPattern = regexp.MustCompile(`NOTARY_SIG_START:([A-Za-z0-9+/=]+):NOTARY_SIG_END`)

// canonicalClaim locks the HMAC input key order via struct field order
// (lexicographic by field name). This is the wire contract for previously
// signed documents: changing the order, the field set, or the MAC algorithm
// invalidates every marker already in circulation.
type canonicalClaim struct {
	DocumentType notary.DocumentType `json:"document_type"`
	IssuedAt     string              `json:"issued_at"`
	Issuer       string              `json:"issuer"`
	OwnerIDHash  string              `json:"owner_id_hash"`
}

// Codec builds and parses authenticated claim markers. It is a pure function
// of its inputs plus the injected secret key; the key is read-only for the
// lifetime of the codec and is never logged or embedded.
type Codec struct {
	secret []byte
}

func New(secret []byte) *Codec {
	return &Codec{secret: secret}
}

func (c *Codec) computeTag(claim notary.Claim) (string, error) {
	payload, err := json.Marshal(canonicalClaim{
		DocumentType: claim.DocumentType,
		IssuedAt:     claim.IssuedAt,
		Issuer:       claim.Issuer,
		OwnerIDHash:  claim.OwnerIDHash,
	})
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Create builds a delimited marker for a new claim. The owner identifier is
// hashed immediately and never enters the marker in raw form.
func (c *Codec) Create(ownerID string, docType notary.DocumentType, issuer string) (string, error) {
	if !docType.Valid() {
		return "", notary.InvalidDocumentTypeError{Type: string(docType)}
	}

	claim := notary.Claim{
		OwnerIDHash:  notary.HashOwnerID(ownerID),
		DocumentType: docType,
		IssuedAt:     time.Now().Format(time.RFC3339),
		Issuer:       issuer,
	}

	tag, err := c.computeTag(claim)
	if err != nil {
		return "", err
	}
	claim.IntegrityTag = tag

	body, err := json.Marshal(claim)
	if err != nil {
		return "", err
	}

	return SigStart + base64.StdEncoding.EncodeToString(body) + SigEnd, nil
}

// Decode scans raw for a marker and returns the enclosed claim, or nil when
// none decodes. Two independent match attempts run over the same buffer: the
// bytes coerced to valid UTF-8 text, and the raw bytes (for containers where
// the marker does not sit inside valid text). The text match takes precedence
// when both hit; within a path the leftmost marker wins.
//
// A marker whose envelope fails to decode yields nil just like an unsigned
// document: callers cannot trust a broken envelope regardless of cause. The
// difference only surfaces in the debug log.
func (c *Codec) Decode(raw []byte) *notary.Claim {
	textMatch := sigPattern.FindStringSubmatch(strings.ToValidUTF8(string(raw), ""))
	rawMatch := sigPattern.FindSubmatch(raw)

	var payload string
	switch {
	case textMatch != nil:
		payload = textMatch[1]
	case rawMatch != nil:
		payload = string(rawMatch[1])
	default:
		return nil
	}

	// Strict decoding: a claim payload has exactly one accepted encoding, so
	// no mutation of the marker bytes can alias to the same claim.
	body, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		slog.Debug(
			"discarding malformed signature envelope",
			slog.String("error", err.Error()),
			slog.String("module", "signature"),
		)
		return nil
	}

	var claim notary.Claim
	err = json.Unmarshal(body, &claim)
	if err != nil {
		slog.Debug(
			"discarding malformed signature envelope",
			slog.String("error", err.Error()),
			slog.String("module", "signature"),
		)
		return nil
	}

	return &claim
}

// Verify checks raw against the expected owner and type. Checks run in strict
// order and stop at the first failure, so an attacker never learns whether a
// later check would have passed: decode, integrity tag, owner, type. The tag
// must be verified before any field comparison; until then every claim field
// is attacker-controlled.
func (c *Codec) Verify(raw []byte, expectedOwner string, expectedType notary.DocumentType) notary.Verdict {
	claim := c.Decode(raw)
	if claim == nil {
		return notary.Verdict{Error: notary.ErrorNoSignatureFound}
	}

	verdict := notary.Verdict{Claim: claim}

	expectedTag, err := c.computeTag(*claim)
	if err != nil || !hmac.Equal([]byte(expectedTag), []byte(claim.IntegrityTag)) {
		verdict.Error = notary.ErrorTamperedSignature
		return verdict
	}

	if notary.HashOwnerID(expectedOwner) != claim.OwnerIDHash {
		verdict.Error = notary.ErrorOwnerMismatch
		return verdict
	}
	verdict.OwnerMatch = true

	if claim.DocumentType != expectedType {
		verdict.Error = notary.ErrorTypeMismatch
		return verdict
	}
	verdict.TypeMatch = true

	verdict.Valid = true
	return verdict
}
