package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/attestia/notary"
	"github.com/attestia/notary/signature"
)

func TestDocumentUsecaseSignVerify(t *testing.T) {
	codec := signature.New([]byte("secret"))
	uc := NewDocumentUsecase(codec, "Default Issuer")

	content := []byte("certificate body")
	signed, err := uc.Sign(context.Background(), content, "cert.txt", "owner-1", notary.DocTypeDegreeCertificate, "")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !bytes.HasPrefix(signed, content) {
		t.Fatalf("signed output must preserve the original content")
	}

	verdict := uc.Verify(context.Background(), signed, "owner-1", notary.DocTypeDegreeCertificate)
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got %s", verdict.Error)
	}
	if verdict.Claim.Issuer != "Default Issuer" {
		t.Fatalf("empty issuer must fall back to the default, got %q", verdict.Claim.Issuer)
	}
}

func TestDocumentUsecaseSignExplicitIssuer(t *testing.T) {
	codec := signature.New([]byte("secret"))
	uc := NewDocumentUsecase(codec, "Default Issuer")

	signed, err := uc.Sign(context.Background(), []byte("x"), "x.txt", "owner-1", notary.DocTypeOther, "City Registry")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claim := uc.Extract(context.Background(), signed)
	if claim == nil {
		t.Fatalf("expected extractable claim")
	}
	if claim.Issuer != "City Registry" {
		t.Fatalf("explicit issuer must win, got %q", claim.Issuer)
	}
}

func TestDocumentUsecaseSignInvalidType(t *testing.T) {
	codec := signature.New([]byte("secret"))
	uc := NewDocumentUsecase(codec, "Default Issuer")

	_, err := uc.Sign(context.Background(), []byte("x"), "x.txt", "owner-1", notary.DocumentType("passport"), "")
	if !errors.Is(err, notary.ErrInvalidDocumentType) {
		t.Fatalf("expected ErrInvalidDocumentType, got %v", err)
	}
}

func TestDocumentUsecaseExtractUnsigned(t *testing.T) {
	codec := signature.New([]byte("secret"))
	uc := NewDocumentUsecase(codec, "Default Issuer")

	if claim := uc.Extract(context.Background(), []byte("nothing here")); claim != nil {
		t.Fatalf("unsigned content must extract no claim")
	}
}
