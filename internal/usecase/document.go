package usecase

import (
	"context"

	"github.com/attestia/notary"
	"github.com/attestia/notary/document"
	"github.com/attestia/notary/signature"
)

// DocumentUsecase covers signing and verification of document bytes. It is
// stateless over the codec's secret key; calls may run fully in parallel.
type DocumentUsecase struct {
	codec         *signature.Codec
	defaultIssuer string
}

func NewDocumentUsecase(codec *signature.Codec, defaultIssuer string) *DocumentUsecase {
	return &DocumentUsecase{
		codec:         codec,
		defaultIssuer: defaultIssuer,
	}
}

// Sign embeds an authenticated ownership claim into content and returns the
// signed bytes. Fails only for a document type outside the allowed set.
func (uc *DocumentUsecase) Sign(ctx context.Context, content []byte, filename, ownerID string, docType notary.DocumentType, issuer string) ([]byte, error) {
	if issuer == "" {
		issuer = uc.defaultIssuer
	}

	marker, err := uc.codec.Create(ownerID, docType, issuer)
	if err != nil {
		return nil, err
	}

	return document.Embed(content, filename, marker), nil
}

// Verify checks content against the expected owner and document type.
func (uc *DocumentUsecase) Verify(ctx context.Context, content []byte, ownerID string, docType notary.DocumentType) notary.Verdict {
	return uc.codec.Verify(content, ownerID, docType)
}

// Extract returns the embedded claim without any policy checks, or nil for
// unsigned content.
func (uc *DocumentUsecase) Extract(ctx context.Context, content []byte) *notary.Claim {
	return uc.codec.Decode(content)
}
