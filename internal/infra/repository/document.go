package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attestia/notary"
	"github.com/attestia/notary/internal/domain"
	"github.com/attestia/notary/internal/infra/database/models"
)

const cacheTTL = 300 // seconds

type DocumentRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewDocumentRepository(db *gorm.DB, mc *memcache.Client) *DocumentRepository {
	return &DocumentRepository{db: db, mc: mc}
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {

	record := models.Document{
		Hash:         doc.Hash,
		OwnerIDHash:  doc.OwnerIDHash,
		DocumentType: string(doc.DocumentType),
		Filename:     doc.Filename,
		Issuer:       doc.Issuer,
		TxID:         doc.TxID,
		NotarizedAt:  doc.NotarizedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "hash"}},
		DoUpdates: clause.Assignments(map[string]any{
			"filename": record.Filename,
			"tx_id":    record.TxID,
		}),
	}).Create(&record).Error
	if err != nil {
		return err
	}

	// The row changed, drop the stale cache entry.
	if r.mc != nil {
		r.mc.Delete(cacheKey(doc.Hash))
	}

	return nil
}

func (r *DocumentRepository) GetByHash(ctx context.Context, hash string) (domain.Document, error) {

	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey(hash)); err == nil {
			var cached domain.Document
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var record models.Document
	err := r.db.WithContext(ctx).
		Where("hash = ?", hash).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Document{}, domain.NotFoundError{Resource: "document", Key: hash}
		}
		return domain.Document{}, err
	}

	doc := domain.Document{
		Hash:         record.Hash,
		OwnerIDHash:  record.OwnerIDHash,
		DocumentType: notary.DocumentType(record.DocumentType),
		Filename:     record.Filename,
		Issuer:       record.Issuer,
		TxID:         record.TxID,
		NotarizedAt:  record.NotarizedAt,
	}

	if r.mc != nil {
		if body, err := json.Marshal(doc); err == nil {
			r.mc.Set(&memcache.Item{Key: cacheKey(hash), Value: body, Expiration: cacheTTL})
		}
	}

	return doc, nil
}

func cacheKey(hash string) string {
	return "notary:doc:" + hash
}
