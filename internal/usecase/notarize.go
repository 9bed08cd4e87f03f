package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/attestia/notary"
	"github.com/attestia/notary/internal/domain"
	"github.com/attestia/notary/signature"
)

// NotarizeUsecase records content hashes on chain and keeps the metadata
// store in sync. The chain transaction itself is signed and submitted by the
// caller's wallet; this side only prepares the payload and tracks state.
type NotarizeUsecase struct {
	repo   DocumentRepository
	chain  ChainGateway
	signal EventPublisher
	codec  *signature.Codec
}

func NewNotarizeUsecase(repo DocumentRepository, chain ChainGateway, signal EventPublisher, codec *signature.Codec) *NotarizeUsecase {
	return &NotarizeUsecase{
		repo:   repo,
		chain:  chain,
		signal: signal,
		codec:  codec,
	}
}

type NotarizeResult struct {
	Hash     string         `json:"hash"`
	Filename string         `json:"filename"`
	Tx       notary.ChainTx `json:"tx"`
}

// Notarize hashes content, persists a metadata record, and returns the
// unsigned storeHash transaction. When the content carries an embedded claim
// its owner digest and type are recorded alongside the hash.
func (uc *NotarizeUsecase) Notarize(ctx context.Context, content []byte, filename string) (*NotarizeResult, error) {
	hash := notary.GetHashHex(content)

	tx, err := uc.chain.StoreHashTx(hash)
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		Hash:     hash,
		Filename: filename,
	}
	if claim := uc.codec.Decode(content); claim != nil {
		doc.OwnerIDHash = claim.OwnerIDHash
		doc.DocumentType = claim.DocumentType
		doc.Issuer = claim.Issuer
	}

	err = uc.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}

	event := notary.Event{
		Type:         domain.EventTypeNotarized,
		Hash:         hash,
		DocumentType: doc.DocumentType,
		Timestamp:    time.Now().UTC(),
	}
	err = uc.signal.Publish(ctx, event)
	if err != nil {
		slog.Warn(
			"failed to publish notarize event",
			slog.String("error", err.Error()),
			slog.String("module", "notarize"),
		)
	}

	return &NotarizeResult{
		Hash:     hash,
		Filename: filename,
		Tx:       tx,
	}, nil
}

type StatusResult struct {
	Hash      string           `json:"hash"`
	Notarized bool             `json:"notarized"`
	Timestamp int64            `json:"timestamp,omitempty"`
	Date      string           `json:"date,omitempty"`
	Record    *domain.Document `json:"record,omitempty"`
}

// Status looks up the on-chain timestamp for a content hash and attaches the
// local metadata record when one exists.
func (uc *NotarizeUsecase) Status(ctx context.Context, hashHex string) (*StatusResult, error) {
	ts, err := uc.chain.VerifyHash(ctx, hashHex)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Hash:      hashHex,
		Notarized: ts > 0,
		Timestamp: ts,
	}
	if ts > 0 {
		result.Date = time.Unix(ts, 0).UTC().Format(time.RFC3339)
	}

	record, err := uc.repo.GetByHash(ctx, hashHex)
	if err == nil {
		result.Record = &record
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return result, nil
}

func (uc *NotarizeUsecase) EstimateGas(ctx context.Context, hashHex, from string) (uint64, error) {
	return uc.chain.EstimateGas(ctx, hashHex, from)
}

func (uc *NotarizeUsecase) ContractInfo() notary.ContractInfo {
	return uc.chain.ContractInfo()
}
