package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/attestia/notary"
)

func TestClientNotarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/notarize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		_, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else if fh.Filename != "deed.txt" {
			t.Errorf("expected uploaded file deed.txt, got %q", fh.Filename)
		}
		json.NewEncoder(w).Encode(NotarizeResponse{
			Hash:     "abc123",
			Filename: "deed.txt",
			Tx:       notary.ChainTx{To: "0xcontract", Data: "0xdeadbeef"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Notarize(context.Background(), []byte("deed body"), "deed.txt")
	if err != nil {
		t.Fatalf("notarize failed: %v", err)
	}
	if result.Hash != "abc123" || result.Tx.To != "0xcontract" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClientVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("owner") != "owner-1" {
			t.Errorf("expected owner field, got %q", r.FormValue("owner"))
		}
		if r.FormValue("type") != "property_deed" {
			t.Errorf("expected type field, got %q", r.FormValue("type"))
		}
		json.NewEncoder(w).Encode(VerifyResponse{
			Verdict: notary.Verdict{Valid: true, OwnerMatch: true, TypeMatch: true},
			Message: "document signature is valid",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Verify(context.Background(), []byte("content"), "deed.pdf", "owner-1", notary.DocTypePropertyDeed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.Verdict.Valid {
		t.Fatalf("expected valid verdict, got %+v", result.Verdict)
	}
}

func TestClientContractInfoCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(notary.ContractInfo{
			ContractAddress: "0xcontract",
			RPCURL:          "http://localhost:8545",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 3; i++ {
		info, err := c.ContractInfo(context.Background())
		if err != nil {
			t.Fatalf("contract info failed: %v", err)
		}
		if info.ContractAddress != "0xcontract" {
			t.Fatalf("unexpected address %q", info.ContractAddress)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Notarize(context.Background(), []byte("x"), "x.txt"); err == nil {
		t.Fatalf("expected an error for non-200 response")
	}
}
