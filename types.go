package notary

import "encoding/json"

// DocumentType is the closed set of category tags a document can be signed as.
// The set is shared vocabulary with the web layer and the CLI; adding a member
// requires updating both sides.
type DocumentType string

const (
	DocTypeBirthCertificate  DocumentType = "birth_certificate"
	DocTypeDegreeCertificate DocumentType = "degree_certificate"
	DocTypePropertyDeed      DocumentType = "property_deed"
	DocTypeEmploymentLetter  DocumentType = "employment_letter"
	DocTypeLegalContract     DocumentType = "legal_contract"
	DocTypeIdentityDocument  DocumentType = "identity_document"
	DocTypeOther             DocumentType = "other"
)

// DocumentTypes returns the allowed set in declaration order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeBirthCertificate,
		DocTypeDegreeCertificate,
		DocTypePropertyDeed,
		DocTypeEmploymentLetter,
		DocTypeLegalContract,
		DocTypeIdentityDocument,
		DocTypeOther,
	}
}

func (t DocumentType) Valid() bool {
	switch t {
	case DocTypeBirthCertificate, DocTypeDegreeCertificate, DocTypePropertyDeed,
		DocTypeEmploymentLetter, DocTypeLegalContract, DocTypeIdentityDocument,
		DocTypeOther:
		return true
	}
	return false
}

// Claim is the authenticated statement embedded in a signed document.
// The owner identifier is never stored raw, only its SHA-256 hex digest.
type Claim struct {
	OwnerIDHash  string       `json:"owner_id_hash"`
	DocumentType DocumentType `json:"document_type"`
	IssuedAt     string       `json:"issued_at"`
	Issuer       string       `json:"issuer"`
	IntegrityTag string       `json:"integrity_tag"`
}

type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorNoSignatureFound
	ErrorTamperedSignature
	ErrorOwnerMismatch
	ErrorTypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return ""
	case ErrorNoSignatureFound:
		return "no_signature_found"
	case ErrorTamperedSignature:
		return "tampered_or_invalid_signature"
	case ErrorOwnerMismatch:
		return "owner_mismatch"
	case ErrorTypeMismatch:
		return "type_mismatch"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *ErrorKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, kind := range []ErrorKind{ErrorNone, ErrorNoSignatureFound, ErrorTamperedSignature, ErrorOwnerMismatch, ErrorTypeMismatch} {
		if kind.String() == s {
			*k = kind
			return nil
		}
	}
	*k = ErrorNone
	return nil
}

// Verdict is the result of a verification attempt. Checks short-circuit in
// order (decode, integrity, owner, type), so a later match flag is never
// populated once an earlier check has failed.
type Verdict struct {
	Valid      bool      `json:"valid"`
	OwnerMatch bool      `json:"owner_match"`
	TypeMatch  bool      `json:"type_match"`
	Error      ErrorKind `json:"error,omitempty"`
	Claim      *Claim    `json:"claim,omitempty"`
}

// Message renders the verdict for humans. It never includes raw owner
// identifiers, only the mismatching type tag where that is the failure.
func (v Verdict) Message() string {
	switch v.Error {
	case ErrorNone:
		return "document signature is valid"
	case ErrorNoSignatureFound:
		return "no valid signature found in document"
	case ErrorTamperedSignature:
		return "document signature is invalid or has been tampered with"
	case ErrorOwnerMismatch:
		return "this document does not belong to the presented owner"
	case ErrorTypeMismatch:
		if v.Claim != nil {
			return "document type mismatch: document is signed as '" + string(v.Claim.DocumentType) + "'"
		}
		return "document type mismatch"
	default:
		return "verification failed"
	}
}
