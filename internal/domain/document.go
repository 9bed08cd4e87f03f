package domain

import (
	"time"

	"github.com/attestia/notary"
)

// Document is the metadata record kept for a notarized document. Only the
// owner digest is stored, never the raw identifier.
type Document struct {
	Hash         string              `json:"hash"`
	OwnerIDHash  string              `json:"ownerIDHash,omitempty"`
	DocumentType notary.DocumentType `json:"documentType,omitempty"`
	Filename     string              `json:"filename"`
	Issuer       string              `json:"issuer,omitempty"`
	TxID         string              `json:"txID,omitempty"`
	NotarizedAt  *time.Time          `json:"notarizedAt,omitempty"`
}
