package models

import (
	"time"
)

// Document is the persisted metadata row for a notarized document, keyed by
// its SHA-256 content hash. The raw owner identifier never reaches this
// table, only its digest.
type Document struct {
	Hash         string     `json:"hash" gorm:"primaryKey;type:text"`
	OwnerIDHash  string     `json:"ownerIDHash" gorm:"type:text;index"`
	DocumentType string     `json:"documentType" gorm:"type:text;index"`
	Filename     string     `json:"filename" gorm:"type:text"`
	Issuer       string     `json:"issuer" gorm:"type:text"`
	TxID         string     `json:"txID" gorm:"type:text"`
	NotarizedAt  *time.Time `json:"notarizedAt" gorm:"type:timestamp with time zone"`
	CDate        time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
