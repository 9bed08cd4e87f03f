package usecase

import (
	"context"

	"github.com/attestia/notary"
	"github.com/attestia/notary/internal/domain"
)

// DocumentRepository defines persistence for notarized document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	GetByHash(ctx context.Context, hash string) (domain.Document, error)
}

// ChainGateway encapsulates the notary contract on the configured chain.
type ChainGateway interface {
	VerifyHash(ctx context.Context, hashHex string) (int64, error)
	StoreHashTx(hashHex string) (notary.ChainTx, error)
	EstimateGas(ctx context.Context, hashHex string, from string) (uint64, error)
	ContractInfo() notary.ContractInfo
}

// EventPublisher broadcasts notarization events to realtime listeners.
type EventPublisher interface {
	Publish(ctx context.Context, event notary.Event) error
}
