package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/attestia/notary"
	"github.com/attestia/notary/document"
	"github.com/attestia/notary/signature"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "keygen":
		keygenCmd(os.Args[2:])
	case "generate":
		generateCmd(os.Args[2:])
	case "sign":
		signCmd(os.Args[2:])
	case "verify":
		verifyCmd(os.Args[2:])
	case "extract":
		extractCmd(os.Args[2:])
	case "hash":
		hashCmd(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", exe)
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  keygen    Generate a random signing key\n")
	fmt.Fprintf(os.Stderr, "  generate  Print a standalone signature marker for manual embedding\n")
	fmt.Fprintf(os.Stderr, "  sign      Embed an ownership claim into a document file\n")
	fmt.Fprintf(os.Stderr, "  verify    Check a signed document against an owner and type\n")
	fmt.Fprintf(os.Stderr, "  extract   Print the embedded claim without verification\n")
	fmt.Fprintf(os.Stderr, "  hash      Print the sha256 content hash of a file\n")
}

func loadKey(keyFlag, keyfileFlag string) []byte {
	if keyFlag != "" {
		return []byte(keyFlag)
	}
	if keyfileFlag != "" {
		data, err := os.ReadFile(keyfileFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", keyfileFlag, err)
			os.Exit(1)
		}
		return []byte(strings.TrimSpace(string(data)))
	}
	fmt.Fprintf(os.Stderr, "a signing key is required: pass -key or -keyfile\n")
	os.Exit(2)
	return nil
}

func keygenCmd(args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	out := fs.String("out", "", "optional path to write the key (printed to stdout otherwise)")
	_ = fs.Parse(args)

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}
	key := hex.EncodeToString(raw)

	if *out == "" {
		fmt.Println(key)
		return
	}
	if err := os.WriteFile(*out, []byte(key+"\n"), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", *out)
}

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	owner := fs.String("owner", "", "owner identifier (hashed before embedding)")
	docType := fs.String("type", "", "document type, see document-types")
	issuer := fs.String("issuer", "notaryctl", "issuer recorded in the claim")
	key := fs.String("key", "", "signing key")
	keyfile := fs.String("keyfile", "", "path to a file holding the signing key")
	_ = fs.Parse(args)

	if *owner == "" || *docType == "" {
		fmt.Fprintf(os.Stderr, "generate requires -owner and -type\n")
		fs.Usage()
		os.Exit(2)
	}

	codec := signature.New(loadKey(*key, *keyfile))
	marker, err := codec.Create(*owner, notary.DocumentType(*docType), *issuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(marker)
}

func signCmd(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	inPath := fs.String("in", "", "path to the document to sign")
	owner := fs.String("owner", "", "owner identifier (hashed before embedding)")
	docType := fs.String("type", "", "document type, see document-types")
	issuer := fs.String("issuer", "notaryctl", "issuer recorded in the claim")
	key := fs.String("key", "", "signing key")
	keyfile := fs.String("keyfile", "", "path to a file holding the signing key")
	out := fs.String("out", "", "output path (default: <base>_signed<ext>)")
	_ = fs.Parse(args)

	if *inPath == "" || *owner == "" || *docType == "" {
		fmt.Fprintf(os.Stderr, "sign requires -in, -owner, and -type\n")
		fs.Usage()
		os.Exit(2)
	}

	content, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *inPath, err)
		os.Exit(1)
	}

	codec := signature.New(loadKey(*key, *keyfile))
	marker, err := codec.Create(*owner, notary.DocumentType(*docType), *issuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}

	signed := document.Embed(content, filepath.Base(*inPath), marker)

	outPath := *out
	if outPath == "" {
		ext := filepath.Ext(*inPath)
		outPath = strings.TrimSuffix(*inPath, ext) + "_signed" + ext
	}
	if err := os.WriteFile(outPath, signed, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
}

func verifyCmd(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	inPath := fs.String("in", "", "path to the signed document")
	owner := fs.String("owner", "", "expected owner identifier")
	docType := fs.String("type", "", "expected document type")
	key := fs.String("key", "", "signing key")
	keyfile := fs.String("keyfile", "", "path to a file holding the signing key")
	_ = fs.Parse(args)

	if *inPath == "" || *owner == "" || *docType == "" {
		fmt.Fprintf(os.Stderr, "verify requires -in, -owner, and -type\n")
		fs.Usage()
		os.Exit(2)
	}

	content, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *inPath, err)
		os.Exit(1)
	}

	codec := signature.New(loadKey(*key, *keyfile))
	verdict := codec.Verify(content, *owner, notary.DocumentType(*docType))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verdict); err != nil {
		fmt.Fprintf(os.Stderr, "encode verdict: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s\n", verdict.Message())

	if !verdict.Valid {
		os.Exit(1)
	}
}

func extractCmd(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("in", "", "path to the signed document")
	key := fs.String("key", "", "signing key")
	keyfile := fs.String("keyfile", "", "path to a file holding the signing key")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Fprintf(os.Stderr, "extract requires -in\n")
		fs.Usage()
		os.Exit(2)
	}

	content, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *inPath, err)
		os.Exit(1)
	}

	codec := signature.New(loadKey(*key, *keyfile))
	claim := codec.Decode(content)
	if claim == nil {
		fmt.Fprintf(os.Stderr, "no signature found\n")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(claim); err != nil {
		fmt.Fprintf(os.Stderr, "encode claim: %v\n", err)
		os.Exit(1)
	}
}

func hashCmd(args []string) {
	fs := flag.NewFlagSet("hash", flag.ExitOnError)
	inPath := fs.String("in", "", "path to the file to hash")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Fprintf(os.Stderr, "hash requires -in\n")
		fs.Usage()
		os.Exit(2)
	}

	content, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *inPath, err)
		os.Exit(1)
	}

	fmt.Println(notary.GetHashHex(content))
}
